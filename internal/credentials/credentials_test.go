package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	return path
}

func TestEnvProviderReadsFile(t *testing.T) {
	path := writeEnvFile(t, "Site_Pass=hunter2\nSMTP_USER=mailer@example.com\n")

	p, err := NewEnvProvider(path)
	if err != nil {
		t.Fatalf("NewEnvProvider() error = %v", err)
	}
	p.lookup = func(string) (string, bool) { return "", false }

	tests := []struct {
		name     string
		expected string
	}{
		{name: "Site_Pass", expected: "hunter2"},
		{name: "smtp.user", expected: "mailer@example.com"},
		{name: "SMTP-User", expected: "mailer@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.GetSecret(tt.name)
			if err != nil {
				t.Fatalf("GetSecret(%q) error = %v", tt.name, err)
			}
			if got != tt.expected {
				t.Errorf("GetSecret(%q) = %q, expected %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestEnvProviderPrefersProcessEnvironment(t *testing.T) {
	path := writeEnvFile(t, "SITE_PASS=from-file\n")
	t.Setenv("SITE_PASS", "from-env")

	p, err := NewEnvProvider(path)
	if err != nil {
		t.Fatalf("NewEnvProvider() error = %v", err)
	}
	got, err := p.GetSecret("Site_Pass")
	if err != nil {
		t.Fatalf("GetSecret() error = %v", err)
	}
	if got != "from-env" {
		t.Errorf("GetSecret() = %q, expected process environment value", got)
	}
}

func TestEnvProviderMissing(t *testing.T) {
	p, err := NewEnvProvider(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("NewEnvProvider() should skip missing files, got %v", err)
	}
	p.lookup = func(string) (string, bool) { return "", false }

	for _, name := range []string{"Site_Pass", "", "   "} {
		if _, err := p.GetSecret(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetSecret(%q) error = %v, expected ErrNotFound", name, err)
		}
	}
}

func TestEnvProviderEmptyValueIsMissing(t *testing.T) {
	path := writeEnvFile(t, "SITE_PASS=\n")
	p, err := NewEnvProvider(path)
	if err != nil {
		t.Fatalf("NewEnvProvider() error = %v", err)
	}
	p.lookup = func(string) (string, bool) { return "", false }
	if _, err := p.GetSecret("SITE_PASS"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSecret() error = %v, expected ErrNotFound", err)
	}
}

func TestStatic(t *testing.T) {
	s := Static{"Site_Pass": "secret"}
	if v, err := s.GetSecret("Site_Pass"); err != nil || v != "secret" {
		t.Fatalf("GetSecret() = %q, %v", v, err)
	}
	if _, err := s.GetSecret("other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSecret(other) error = %v, expected ErrNotFound", err)
	}
}
