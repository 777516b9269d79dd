package phone

import (
	"errors"
	"sync"

	apperrors "github.com/FocuswithJustin/GlobalPhone/core/errors"
	"github.com/FocuswithJustin/GlobalPhone/internal/logging"
)

// DefaultTerritory is the territory used when a caller passes none.
const DefaultTerritory = "US"

// ErrNoDatabase is returned when a Service has no database source.
var ErrNoDatabase = errors.New("no database configured")

// Option configures a Service.
type Option func(*Service)

// WithDatabasePath loads the database from a file on first use.
func WithDatabasePath(path string) Option {
	return func(s *Service) { s.path = path }
}

// WithDatabaseText loads the database from text on first use.
func WithDatabaseText(text string) Option {
	return func(s *Service) { s.text = text }
}

// WithDatabase uses an already loaded database.
func WithDatabase(db *Database) Option {
	return func(s *Service) { s.db = db }
}

// WithDecoder sets the decoder for path and text sources. JSON by default.
func WithDecoder(dec Decoder) Option {
	return func(s *Service) { s.decoder = dec }
}

// WithDefaultTerritory sets the territory used when callers pass "".
func WithDefaultTerritory(name string) Option {
	return func(s *Service) { s.defaultTerritory = name }
}

// Service is the entry point for parsing. Its database is realised once, on
// first use.
type Service struct {
	path             string
	text             string
	db               *Database
	decoder          Decoder
	defaultTerritory string

	once     sync.Once
	database *Database
	err      error
}

// NewService creates a Service. Nothing is loaded until first use.
func NewService(opts ...Option) *Service {
	s := &Service{
		decoder:          JSONDecoder{},
		defaultTerritory: DefaultTerritory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Database returns the realised database. The first call loads it; later
// calls return the same database or the same error.
func (s *Service) Database() (*Database, error) {
	s.once.Do(func() {
		switch {
		case s.db != nil:
			s.database = s.db
		case s.text != "":
			s.database, s.err = Load(s.text, s.decoder)
		case s.path != "":
			s.database, s.err = LoadFile(s.path, s.decoder)
		default:
			s.err = ErrNoDatabase
		}
	})
	return s.database, s.err
}

// DefaultTerritory returns the territory used when callers pass "".
func (s *Service) DefaultTerritory() string {
	return s.defaultTerritory
}

func (s *Service) territory(name string) string {
	if name == "" {
		return s.defaultTerritory
	}
	return name
}

// Parse parses text as dialled from territory ("" for the default).
func (s *Service) Parse(text, territory string) (*Number, error) {
	db, err := s.Database()
	if err != nil {
		return nil, err
	}
	return db.Parse(text, s.territory(territory))
}

// Validate reports whether text parses to a valid number. Parse failures
// report false.
func (s *Service) Validate(text, territory string) bool {
	n, err := s.Parse(text, territory)
	return err == nil && n.IsValid()
}

// Normalize returns the E.164 form of text.
func (s *Service) Normalize(text, territory string) (string, error) {
	n, err := s.Parse(text, territory)
	if err != nil {
		return "", err
	}
	return n.E164(), nil
}

// TryParse is Parse reporting success as a flag instead of an error. Any
// failure, including a database that cannot be loaded, reports false; use
// Database to see why loading failed.
func (s *Service) TryParse(text, territory string) (*Number, bool) {
	n, err := s.Parse(text, territory)
	if err != nil {
		if !apperrors.IsRecoverable(err) {
			logging.Warn("try_parse_failed", "error", err.Error())
		}
		return nil, false
	}
	return n, true
}

// TryNormalize is Normalize reporting success as a flag instead of an error.
func (s *Service) TryNormalize(text, territory string) (string, bool) {
	n, ok := s.TryParse(text, territory)
	if !ok {
		return "", false
	}
	return n.E164(), true
}
