package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readPasswordNoEcho reads one line from a terminal with echo switched off.
func readPasswordNoEcho(stdin *os.File) ([]byte, error) {
	if stdin == nil {
		return nil, errors.New("stdin unavailable")
	}

	restore, err := disableEcho(stdin)
	if err != nil {
		return nil, err
	}
	defer restore()

	return readSecretLine(stdin)
}

func readSecretLine(input io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// PromptNewPassword asks twice on a terminal without echo.
func PromptNewPassword(stdin *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	first, err := readPasswordNoEcho(stdin)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Repeat password: ")
	second, err := readPasswordNoEcho(stdin)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
