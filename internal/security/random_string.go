package security

import (
	"crypto/rand"
	"errors"
)

const maxAlphabetSize = 256

var (
	ErrNegativeLength  = errors.New("length must be non-negative")
	ErrInvalidAlphabet = errors.New("alphabet must hold between 1 and 256 bytes")
)

// RandomString draws length bytes uniformly from alphabet using crypto/rand.
// Random bytes at or above the largest multiple of len(alphabet) are rejected
// so every symbol is equally likely.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", ErrNegativeLength
	}
	if len(alphabet) == 0 || len(alphabet) > maxAlphabetSize {
		return "", ErrInvalidAlphabet
	}
	if length == 0 {
		return "", nil
	}

	size := len(alphabet)
	limit := maxAlphabetSize - maxAlphabetSize%size
	result := make([]byte, 0, length)
	buffer := make([]byte, length+length/2)
	for len(result) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, value := range buffer {
			if int(value) >= limit {
				continue
			}
			result = append(result, alphabet[int(value)%size])
			if len(result) == length {
				break
			}
		}
	}
	return string(result), nil
}
