// Package credentials resolves named secrets such as the site password and
// the SMTP login without tying the rest of the application to where they are
// stored.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrNotFound is returned when no source holds the requested secret.
var ErrNotFound = errors.New("secret not found")

// Provider looks up secrets by name.
type Provider interface {
	GetSecret(name string) (string, error)
}

// EnvProvider reads secrets from the process environment, falling back to
// values loaded from .env files. The process environment always wins.
type EnvProvider struct {
	fileValues map[string]string
	lookup     func(string) (string, bool)
}

// NewEnvProvider loads the given .env files. Files that do not exist are
// skipped; unreadable or malformed files are an error.
func NewEnvProvider(files ...string) (*EnvProvider, error) {
	values := make(map[string]string)
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		loaded, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		for k, v := range loaded {
			// earlier files take precedence, matching godotenv.Load
			if _, exists := values[k]; !exists {
				values[k] = v
			}
		}
	}
	return &EnvProvider{fileValues: values, lookup: os.LookupEnv}, nil
}

// GetSecret returns the secret stored under name. The exact name is tried
// first, then its environment form: upper case with '.' and '-' mapped to
// '_' (so "smtp.user" resolves SMTP_USER).
func (p *EnvProvider) GetSecret(name string) (string, error) {
	for _, key := range candidateKeys(name) {
		if v, ok := p.lookup(key); ok && v != "" {
			return v, nil
		}
		if v, ok := p.fileValues[key]; ok && v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// EnvKey converts a secret name to its environment variable form.
func EnvKey(name string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(strings.TrimSpace(name)))
}

func candidateKeys(name string) []string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}
	keys := []string{trimmed}
	if upper := EnvKey(trimmed); upper != trimmed {
		keys = append(keys, upper)
	}
	return keys
}

// Static is a fixed in-memory provider.
type Static map[string]string

// GetSecret returns the value stored under name.
func (s Static) GetSecret(name string) (string, error) {
	if v, ok := s[name]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
