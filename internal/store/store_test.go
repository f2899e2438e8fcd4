package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamdashante1/mb/internal/config"
	"github.com/iamdashante1/mb/models"
)

func getTestStore(t *testing.T) *GormStore {
	s, err := OpenSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))

	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return s
}

// fixedClock returns start, start+1s, start+2s, ...
func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

func TestGormStore_InsertAssignsIdentity(t *testing.T) {
	s := getTestStore(t)
	ctx := context.Background()

	sub := &models.Submission{Kind: models.KindRSVP, Name: "Ann", Email: "a@x.com", Relationship: "Friend"}
	require.NoError(t, s.Insert(ctx, sub))

	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.CreatedAt.IsZero())
	assert.NotNil(t, sub.Attachments)

	res, err := s.List(ctx, models.KindRSVP)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, sub.ID, res[0].ID)
	assert.Equal(t, "Friend", res[0].Relationship)
	assert.Equal(t, models.KindRSVP, res[0].Kind)
}

func TestGormStore_ListNewestFirst(t *testing.T) {
	s := getTestStore(t)
	s.now = fixedClock(time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, s.Insert(ctx, &models.Submission{Kind: models.KindTribute, Name: name, Message: "m"}))
	}

	res, err := s.List(ctx, models.KindTribute)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "C", res[0].Name)
	assert.Equal(t, "B", res[1].Name)
	assert.Equal(t, "A", res[2].Name)

	again, err := s.List(ctx, models.KindTribute)
	require.NoError(t, err)
	require.Len(t, again, 3)
	for i := range res {
		assert.Equal(t, res[i].ID, again[i].ID)
	}
}

func TestGormStore_KindsAreSeparate(t *testing.T) {
	s := getTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &models.Submission{Kind: models.KindRSVP, Name: "Ann", Email: "a@x.com", Relationship: "Friend"}))
	require.NoError(t, s.Insert(ctx, &models.Submission{Kind: models.KindRSVP, Name: "Ann", Email: "a@x.com", Relationship: "Friend"}))

	rsvps, err := s.List(ctx, models.KindRSVP)
	require.NoError(t, err)
	assert.Len(t, rsvps, 2, "duplicates are stored independently")
	assert.NotEqual(t, rsvps[0].ID, rsvps[1].ID)

	tributes, err := s.List(ctx, models.KindTribute)
	require.NoError(t, err)
	assert.Empty(t, tributes)
}

func TestGormStore_AttachmentsRoundTrip(t *testing.T) {
	s := getTestStore(t)
	ctx := context.Background()

	att := models.Attachment{URL: "data:image/png;base64,AAEC", Type: "image/png", Name: "p.png", Size: 3}
	require.NoError(t, s.Insert(ctx, &models.Submission{Kind: models.KindTribute, Name: "Lee", Attachments: []models.Attachment{att}}))

	res, err := s.List(ctx, models.KindTribute)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, []models.Attachment{att}, res[0].Attachments)
}

func TestGormStore_UnknownKind(t *testing.T) {
	s := getTestStore(t)

	err := s.Insert(context.Background(), &models.Submission{Name: "x"})
	require.ErrorIs(t, err, ErrPersistence)
}

func TestGormStore_ClosedDatabase(t *testing.T) {
	s, err := OpenSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	err = s.Insert(context.Background(), &models.Submission{Kind: models.KindRSVP, Name: "Ann"})
	require.ErrorIs(t, err, ErrPersistence)

	_, err = s.List(context.Background(), models.KindRSVP)
	require.ErrorIs(t, err, ErrPersistence)
}

func TestLazy_OpensOnce(t *testing.T) {
	opens := 0
	l := NewLazy(func(context.Context) (Store, error) {
		opens++
		return getTestStore(t), nil
	})
	ctx := context.Background()

	require.NoError(t, l.Migrate(ctx))
	require.NoError(t, l.Insert(ctx, &models.Submission{Kind: models.KindTribute, Name: "Lee", Message: "Miss you"}))
	res, err := l.List(ctx, models.KindTribute)
	require.NoError(t, err)

	assert.Len(t, res, 1)
	assert.Equal(t, 1, opens)
}

func TestLazy_RetriesFailedOpen(t *testing.T) {
	opens := 0
	l := NewLazy(func(context.Context) (Store, error) {
		opens++
		if opens == 1 {
			return nil, errors.New("connection refused")
		}
		return getTestStore(t), nil
	})
	ctx := context.Background()

	_, err := l.List(ctx, models.KindRSVP)
	require.ErrorIs(t, err, ErrPersistence)

	require.NoError(t, l.Migrate(ctx))
	assert.Equal(t, 2, opens)
	assert.NoError(t, l.Close(ctx))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "cassandra"})
	require.Error(t, err)
}
