package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamdashante1/mb/models"
)

// ErrPersistence wraps every failure reaching or writing to the database.
var ErrPersistence = errors.New("persistence error")

// Store persists submissions. Records are insert-only.
type Store interface {
	// Insert assigns ID and CreatedAt and writes the record to the
	// collection of its kind.
	Insert(ctx context.Context, sub *models.Submission) error
	// List returns every record of kind, newest first.
	List(ctx context.Context, kind models.Kind) ([]models.Submission, error)
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// prepare stamps identity and creation time on a new record.
func prepare(sub *models.Submission, now time.Time) error {
	if !sub.Kind.Valid() {
		return persistenceErr("insert", fmt.Errorf("unknown submission kind %q", sub.Kind))
	}

	sub.ID = uuid.NewString()
	sub.CreatedAt = now.UTC()

	if sub.Attachments == nil {
		sub.Attachments = []models.Attachment{}
	}

	return nil
}

// Lazy opens the underlying store on first use and shares the handle with
// every later caller. A failed open is not cached.
type Lazy struct {
	open func(ctx context.Context) (Store, error)

	mu sync.Mutex
	s  Store
}

func NewLazy(open func(ctx context.Context) (Store, error)) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) get(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.s != nil {
		return l.s, nil
	}

	s, err := l.open(ctx)
	if err != nil {
		return nil, persistenceErr("connect", err)
	}

	l.s = s

	return s, nil
}

func (l *Lazy) Insert(ctx context.Context, sub *models.Submission) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}

	return s.Insert(ctx, sub)
}

func (l *Lazy) List(ctx context.Context, kind models.Kind) ([]models.Submission, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}

	return s.List(ctx, kind)
}

func (l *Lazy) Migrate(ctx context.Context) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}

	return s.Migrate(ctx)
}

// Close releases the handle if one was opened.
func (l *Lazy) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.s == nil {
		return nil
	}

	err := l.s.Close(ctx)
	l.s = nil

	return err
}
