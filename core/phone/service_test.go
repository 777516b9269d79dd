package phone

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/GlobalPhone/core/compiler"
	apperrors "github.com/FocuswithJustin/GlobalPhone/core/errors"
)

func resetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultService = nil
}

func TestServiceNoDatabase(t *testing.T) {
	s := NewService()
	if _, err := s.Parse("020 7946 0958", "GB"); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Parse() error = %v, want ErrNoDatabase", err)
	}
	if s.Validate("020 7946 0958", "GB") {
		t.Error("Validate() without a database should be false")
	}
	if n, ok := s.TryParse("020 7946 0958", "GB"); ok || n != nil {
		t.Errorf("TryParse() = %v, %v, want nil, false", n, ok)
	}
}

func TestServiceSources(t *testing.T) {
	text := fixtureJSON(t, compiler.EncodingNamed)
	path := filepath.Join(t.TempDir(), "global_phone.json")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	db := fixtureDB(t)

	tests := []struct {
		name string
		opts []Option
	}{
		{"database", []Option{WithDatabase(db)}},
		{"text", []Option{WithDatabaseText(text)}},
		{"path", []Option{WithDatabasePath(path)}},
		{"database wins over path", []Option{WithDatabasePath("/nonexistent"), WithDatabase(db)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(tt.opts...)
			got, err := s.Normalize("020 7946 0958", "GB")
			if err != nil {
				t.Fatalf("Normalize() failed: %v", err)
			}
			if got != "+442079460958" {
				t.Errorf("Normalize() = %s, want +442079460958", got)
			}
			first, _ := s.Database()
			second, _ := s.Database()
			if first != second {
				t.Error("Database() realised twice")
			}
		})
	}
}

func TestServiceLoadErrorIsSticky(t *testing.T) {
	s := NewService(WithDatabaseText(`{"not": "a list"}`))
	_, err1 := s.Database()
	_, err2 := s.Database()
	if err1 == nil || err1 != err2 {
		t.Errorf("Database() errors = %v, %v", err1, err2)
	}
	if got, ok := s.TryNormalize("020 7946 0958", "GB"); ok || got != "" {
		t.Errorf("TryNormalize() = %q, %v, want failure on a broken database", got, ok)
	}
}

func TestServiceDefaultTerritory(t *testing.T) {
	db := fixtureDB(t)

	s := NewService(WithDatabase(db))
	if s.DefaultTerritory() != DefaultTerritory {
		t.Errorf("DefaultTerritory() = %s", s.DefaultTerritory())
	}
	if n, err := s.Parse("(201) 555-0123", ""); err != nil || n.Territory().Name() != "US" {
		t.Errorf("Parse with default territory = %v, %v", n, err)
	}

	s = NewService(WithDatabase(db), WithDefaultTerritory("GB"))
	if !s.Validate("020 7946 0958", "") {
		t.Error("Validate() with GB default should be true")
	}
}

func TestServiceTry(t *testing.T) {
	s := NewService(WithDatabase(fixtureDB(t)))

	tests := []struct {
		name      string
		text      string
		territory string
		want      string
	}{
		{"valid", "020 7946 0958", "GB", "+442079460958"},
		{"unknown territory", "020 7946 0958", "ZZ", ""},
		{"no digits", "hello", "GB", ""},
		{"unknown calling code", "+999 12", "GB", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.TryNormalize(tt.text, tt.territory)
			if got != tt.want || ok != (tt.want != "") {
				t.Errorf("TryNormalize() = %q, %v, want %q", got, ok, tt.want)
			}
			n, ok := s.TryParse(tt.text, tt.territory)
			if ok != (tt.want != "") || (n == nil) == ok {
				t.Errorf("TryParse() = %v, %v", n, ok)
			}
		})
	}

	if _, err := s.Normalize("hello", "GB"); !errors.Is(err, apperrors.ErrFailedToParse) {
		t.Errorf("Normalize(hello) error = %v", err)
	}
}

func TestConfigure(t *testing.T) {
	resetDefault()
	t.Cleanup(resetDefault)

	if err := Configure(WithDatabase(fixtureDB(t)), WithDefaultTerritory("GB")); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}
	if err := Configure(); !errors.Is(err, ErrAlreadyConfigured) {
		t.Errorf("second Configure() error = %v, want ErrAlreadyConfigured", err)
	}

	if !Validate("020 7946 0958", "") {
		t.Error("Validate() = false")
	}
	if got, err := Normalize("+44 20 7946 0958", ""); err != nil || got != "+442079460958" {
		t.Errorf("Normalize() = %q, %v", got, err)
	}
	if n, err := Parse("020 7946 0958", ""); err != nil || n.Territory().Name() != "GB" {
		t.Errorf("Parse() = %v, %v", n, err)
	}
	if n, ok := TryParse("x", ""); n != nil || ok {
		t.Errorf("TryParse(x) = %v, %v", n, ok)
	}
	if got, ok := TryNormalize("x", ""); got != "" || ok {
		t.Errorf("TryNormalize(x) = %q, %v", got, ok)
	}
	if got, ok := TryNormalize("+44 20 7946 0958", ""); !ok || got != "+442079460958" {
		t.Errorf("TryNormalize() = %q, %v", got, ok)
	}
}

func TestDefaultFromEnvironment(t *testing.T) {
	resetDefault()
	t.Cleanup(resetDefault)

	path := filepath.Join(t.TempDir(), "global_phone.json")
	if err := os.WriteFile(path, []byte(fixtureJSON(t, compiler.EncodingPositional)), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDatabasePath, path)

	if got, err := Normalize("(201) 555-0123", ""); err != nil || got != "+12015550123" {
		t.Errorf("Normalize() = %q, %v", got, err)
	}
	if err := Configure(); !errors.Is(err, ErrAlreadyConfigured) {
		t.Errorf("Configure() after use error = %v", err)
	}
}
