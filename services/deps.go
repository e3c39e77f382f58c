package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/fieldservice-app/lock"
	"github.com/yeremiapane/fieldservice-app/store"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// deps is shared by the engine and the gates.
type deps struct {
	store     *store.Store
	locks     lock.Locker
	notifier  Notifier
	catalog   Catalog
	directory Directory
	now       func() time.Time
}

type Option func(*deps)

func WithLocker(l lock.Locker) Option {
	return func(d *deps) { d.locks = l }
}

func WithNotifier(n Notifier) Option {
	return func(d *deps) { d.notifier = n }
}

func WithCatalog(c Catalog) Option {
	return func(d *deps) { d.catalog = c }
}

func WithDirectory(dir Directory) Option {
	return func(d *deps) { d.directory = dir }
}

// WithClock replaces time.Now for timestamps written by the lifecycle.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

func newDeps(st *store.Store, opts []Option) deps {
	d := deps{
		store:     st,
		locks:     lock.NewLocalLocker(),
		notifier:  nopNotifier{},
		catalog:   storeCatalog{},
		directory: storeDirectory{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d *deps) timestamp() time.Time {
	return d.now().UTC()
}

// run executes fn under the request key lock and inside one transaction.
// Events returned by the committed attempt are published afterwards.
func (d *deps) run(ctx context.Context, key string, fn func(tx *store.Tx) ([]Event, error)) error {
	if key != "" {
		release, err := d.locks.Lock(ctx, key)
		if err != nil {
			return infra("failed to acquire request lock", err)
		}
		defer release()
	}

	var events []Event
	err := d.store.Transaction(ctx, func(tx *store.Tx) error {
		var err error
		events, err = fn(tx)
		return err
	})
	if err != nil {
		var lifecycleErr *Error
		if errors.As(err, &lifecycleErr) {
			return err
		}
		return infra("transaction failed", err)
	}

	for _, ev := range events {
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = d.timestamp()
		}
		utils.InfoLogger.WithField("event", ev.Type).WithField("request_id", ev.RequestID).Debug("publishing lifecycle event")
		d.notifier.Notify(ctx, ev)
	}
	return nil
}
