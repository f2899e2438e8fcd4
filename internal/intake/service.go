package intake

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iamdashante1/mb/internal/metrics"
	"github.com/iamdashante1/mb/internal/notify"
	"github.com/iamdashante1/mb/internal/store"
	"github.com/iamdashante1/mb/models"
)

// Notifier delivers a submission summary without reporting back.
type Notifier interface {
	Dispatch(ctx context.Context, subject string, fields []notify.Field)
}

// Service runs the intake pipeline: validate, persist, then notify.
type Service struct {
	store    store.Store
	notifier Notifier
	logger   *zap.Logger
}

func NewService(st store.Store, n Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    st,
		notifier: n,
		logger:   logger.With(zap.String("logger", "intake")),
	}
}

// Submit stores a parsed submission of kind and returns the stored record.
// Validation failures are *ValidationError; storage failures wrap
// store.ErrPersistence. Notification starts only after the record is stored
// and cannot change the result.
func (s *Service) Submit(ctx context.Context, kind models.Kind, body Body) (*models.Submission, error) {
	logger := s.logger.With(zap.String("kind", string(kind)), zap.String("transport", body.Transport()))

	if mb, ok := body.(MultipartBody); ok {
		for _, d := range mb.Dropped {
			logger.Info("attachment dropped",
				zap.String("file", d.Name), zap.String("type", d.Type), zap.String("reason", string(d.Reason)))
			metrics.AttachmentDropped(string(kind), string(d.Reason))
		}
	}

	rec := body.Record()

	if err := Validate(kind, rec); err != nil {
		metrics.Submission(string(kind), "rejected")
		return nil, err
	}

	sub := &models.Submission{
		Kind:        kind,
		Name:        rec.Name,
		Message:     rec.Message,
		Attachments: rec.Attachments,
	}

	if kind == models.KindRSVP {
		sub.Email = rec.Email
		sub.Relationship = rec.Relationship
	}

	if err := s.store.Insert(ctx, sub); err != nil {
		metrics.Submission(string(kind), "failed")
		return nil, err
	}

	metrics.Submission(string(kind), "accepted")
	logger.Info("submission stored", zap.String("id", sub.ID), zap.Int("attachments", len(sub.Attachments)))

	s.notifier.Dispatch(ctx, Subject(sub), Summary(sub))

	return sub, nil
}

func (s *Service) List(ctx context.Context, kind models.Kind) ([]models.Submission, error) {
	return s.store.List(ctx, kind)
}

// ListAll reads both kinds concurrently.
func (s *Service) ListAll(ctx context.Context) (rsvps, tributes []models.Submission, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		rsvps, err = s.store.List(ctx, models.KindRSVP)
		return err
	})

	g.Go(func() error {
		var err error
		tributes, err = s.store.List(ctx, models.KindTribute)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return rsvps, tributes, nil
}

func Subject(sub *models.Submission) string {
	if sub.Kind == models.KindRSVP {
		return "New RSVP from " + sub.Name
	}

	return "New tribute from " + sub.Name
}

// Summary lists the fields shown in a notification email.
func Summary(sub *models.Submission) []notify.Field {
	fields := []notify.Field{{Label: "Name", Value: sub.Name}}

	if sub.Kind == models.KindRSVP {
		fields = append(fields,
			notify.Field{Label: "Email", Value: sub.Email},
			notify.Field{Label: "Relationship", Value: sub.Relationship},
		)
	}

	attachments := ""
	if n := len(sub.Attachments); n > 0 {
		attachments = fmt.Sprintf("%d file(s)", n)
	}

	return append(fields,
		notify.Field{Label: "Message", Value: sub.Message},
		notify.Field{Label: "Attachments", Value: attachments},
		notify.Field{Label: "Submitted", Value: sub.CreatedAt.Format(time.RFC1123)},
	)
}
