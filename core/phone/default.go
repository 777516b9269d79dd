package phone

import (
	"errors"
	"os"
	"sync"
)

// EnvDatabasePath names the environment variable read by the default
// service when Configure was never called.
const EnvDatabasePath = "PHONEDB_PATH"

// ErrAlreadyConfigured is returned by Configure once the default service
// exists.
var ErrAlreadyConfigured = errors.New("default service already configured")

var (
	defaultMu      sync.Mutex
	defaultService *Service
)

// Configure sets up the default service. It can be called once, and only
// before anything has used the default service.
func Configure(opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultService != nil {
		return ErrAlreadyConfigured
	}
	defaultService = NewService(opts...)
	return nil
}

// Default returns the default service, creating it from $PHONEDB_PATH if
// Configure was never called.
func Default() *Service {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultService == nil {
		defaultService = NewService(WithDatabasePath(os.Getenv(EnvDatabasePath)))
	}
	return defaultService
}

// Parse parses text with the default service.
func Parse(text, territory string) (*Number, error) {
	return Default().Parse(text, territory)
}

// Validate validates text with the default service.
func Validate(text, territory string) bool {
	return Default().Validate(text, territory)
}

// Normalize normalizes text with the default service.
func Normalize(text, territory string) (string, error) {
	return Default().Normalize(text, territory)
}

// TryParse parses text with the default service.
func TryParse(text, territory string) (*Number, bool) {
	return Default().TryParse(text, territory)
}

// TryNormalize normalizes text with the default service.
func TryNormalize(text, territory string) (string, bool) {
	return Default().TryNormalize(text, territory)
}
