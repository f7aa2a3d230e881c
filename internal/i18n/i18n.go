package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
)

const (
	LangTR = "tr"
	LangEN = "en"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// catalog maps a message key to its text in one language.
type catalog map[string]string

func (messages catalog) lookup(key string) (string, bool) {
	value, ok := messages[key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// Manager serves the Turkish and English message catalogs. Turkish is the
// fallback whenever no usable language is given.
type Manager struct {
	defaultLanguage string
	catalogs        map[string]catalog
}

// NewManager loads the catalogs compiled into the binary.
func NewManager(defaultLanguage string) (*Manager, error) {
	locales, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return nil, fmt.Errorf("open embedded locales: %w", err)
	}
	return NewManagerFromFS(defaultLanguage, locales)
}

// NewManagerFromFS expects <lang>.json for every supported language at the
// root of locales. Other files are ignored.
func NewManagerFromFS(defaultLanguage string, locales fs.FS) (*Manager, error) {
	catalogs := make(map[string]catalog, 2)
	for _, language := range []string{LangEN, LangTR} {
		messages, err := readCatalog(locales, language)
		if err != nil {
			return nil, err
		}
		catalogs[language] = messages
	}

	manager := &Manager{defaultLanguage: LangTR, catalogs: catalogs}
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)
	return manager, nil
}

func readCatalog(locales fs.FS, language string) (catalog, error) {
	content, err := fs.ReadFile(locales, language+".json")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("required locale %q missing", language)
	}
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", language, err)
	}

	messages := catalog{}
	if err := json.Unmarshal(content, &messages); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", language, err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("locale %s is empty", language)
	}
	return messages, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	languages := make([]string, 0, len(manager.catalogs))
	for language := range manager.catalogs {
		languages = append(languages, language)
	}
	slices.Sort(languages)
	return languages
}

func (manager *Manager) NormalizeLanguage(raw string) string {
	if language := primarySubtag(raw); manager.supports(language) {
		return language
	}
	return manager.defaultLanguage
}

// DetectFromAcceptLanguage picks the supported language with the highest
// quality weight. Ties keep header order and q=0 entries are skipped.
func (manager *Manager) DetectFromAcceptLanguage(header string) string {
	best, bestWeight := "", 0.0
	for _, part := range strings.Split(header, ",") {
		tag, params, _ := strings.Cut(part, ";")
		language := primarySubtag(tag)
		if !manager.supports(language) {
			continue
		}
		if weight := qualityWeight(params); weight > bestWeight {
			best, bestWeight = language, weight
		}
	}
	if best == "" {
		return manager.defaultLanguage
	}
	return best
}

// Translate falls back to the default language and then to the key itself.
func (manager *Manager) Translate(language string, key string) string {
	if value, ok := manager.catalogs[manager.NormalizeLanguage(language)].lookup(key); ok {
		return value
	}
	if value, ok := manager.catalogs[manager.defaultLanguage].lookup(key); ok {
		return value
	}
	return key
}

func (manager *Manager) Translatef(language string, key string, args ...any) string {
	return fmt.Sprintf(manager.Translate(language, key), args...)
}

func (manager *Manager) supports(language string) bool {
	_, ok := manager.catalogs[language]
	return ok
}

// primarySubtag reduces "en-US" or "EN_gb" to "en".
func primarySubtag(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	tag, _, _ = strings.Cut(strings.ReplaceAll(tag, "_", "-"), "-")
	return tag
}

func qualityWeight(params string) float64 {
	for _, param := range strings.Split(params, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || strings.TrimSpace(name) != "q" {
			continue
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || weight < 0 {
			return 0
		}
		return min(weight, 1)
	}
	return 1
}
