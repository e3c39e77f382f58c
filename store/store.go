package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/fieldservice-app/utils"
	"gorm.io/gorm"
)

const (
	defaultRetries = 3
	defaultBackoff = 25 * time.Millisecond
)

// Store is the entity store. All lifecycle writes go through Transaction.
type Store struct {
	db      *gorm.DB
	retries int
	backoff time.Duration
}

type Option func(*Store)

// WithRetries sets how many times a transaction is replayed after a
// transient conflict.
func WithRetries(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.retries = n
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(s *Store) {
		s.backoff = d
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:      db,
		retries: defaultRetries,
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a single database transaction. fn must perform
// every read and write through the given handle. The transaction is replayed
// when it fails with a transient conflict, so fn must not keep side effects
// outside of tx between attempts.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	for attempt := 0; ; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
			return fn(&Tx{db: gtx})
		})
		if err == nil || !IsTransient(err) || attempt >= s.retries {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Warn("transient conflict, retrying transaction")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt+1)):
		}
	}
}

// Read returns a non-transactional handle for read-only queries.
func (s *Store) Read(ctx context.Context) *Tx {
	return &Tx{db: s.db.WithContext(ctx)}
}
