package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/azoai/botadmin/internal/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()

	// ErrPhoneExists signals the best-effort uniqueness check on user phones.
	ErrPhoneExists = errors.New("store: phone number already registered")
	// ErrInvalidRow signals a row that fails boundary validation.
	ErrInvalidRow = errors.New("store: invalid row")
)

// StoreError carries an operation code alongside the underlying cause.
type StoreError struct {
	code string
	err  error
}

func (e *StoreError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *StoreError) Unwrap() error {
	return e.err
}

func (e *StoreError) Code() string {
	return e.code
}

func newStoreError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &StoreError{code: code, err: cause}
}

// EventPublisher receives change events for rows the bot and dashboard write.
type EventPublisher interface {
	Publish(event realtime.Event)
}

// Config describes the dependencies of the data-access layer.
type Config struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Publisher  EventPublisher
	Logger     *zap.Logger
}

// Store is the single data-access layer shared by every page handler. It is
// constructor-injected everywhere it is used so the transforms above it stay
// testable against an in-memory database.
type Store struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	publisher  EventPublisher
	logger     *zap.Logger
}

func New(cfg Config) (*Store, error) {
	if cfg.Database == nil {
		return nil, newStoreError("store.new", "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newStoreError("store.new", "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Store{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		publisher:  cfg.Publisher,
		logger:     logger,
	}, nil
}

func (s *Store) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("store error", attrs...)
}
