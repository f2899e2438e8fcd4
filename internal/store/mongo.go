package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iamdashante1/mb/models"
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore keeps each submission kind in its own collection.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(database), now: time.Now}, nil
}

func (s *MongoStore) Insert(ctx context.Context, sub *models.Submission) error {
	if err := prepare(sub, s.now()); err != nil {
		return err
	}

	// mongo keeps millisecond precision; trim so the returned record matches what is stored
	sub.CreatedAt = sub.CreatedAt.Truncate(time.Millisecond)

	if _, err := s.db.Collection(sub.Kind.Collection()).InsertOne(ctx, sub); err != nil {
		return persistenceErr("insert", err)
	}

	return nil
}

func (s *MongoStore) List(ctx context.Context, kind models.Kind) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := s.db.Collection(kind.Collection()).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, persistenceErr("list "+kind.Collection(), err)
	}

	res := make([]models.Submission, 0)
	if err := cur.All(ctx, &res); err != nil {
		return nil, persistenceErr("decode "+kind.Collection(), err)
	}

	for i := range res {
		res[i].Kind = kind
		if res[i].Attachments == nil {
			res[i].Attachments = []models.Attachment{}
		}
	}

	return res, nil
}

func (s *MongoStore) Migrate(ctx context.Context) error {
	for _, kind := range models.Kinds {
		idx := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}

		if _, err := s.db.Collection(kind.Collection()).Indexes().CreateOne(ctx, idx); err != nil {
			return persistenceErr("index "+kind.Collection(), err)
		}
	}

	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
