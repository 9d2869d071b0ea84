package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore is the remote document backend. Ids are time-derived
// (UnixNano at insert) so they stay monotonic under single-writer use
// without a server-side sequence.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	loc    *time.Location
}

// NewMongoStore connects, pings, and ensures the created_at index exists.
func NewMongoStore(ctx context.Context, uri, dbName string, loc *time.Location) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(dbName).Collection("activities")
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll, loc: loc}, nil
}

func (s *MongoStore) Append(ctx context.Context, activity *models.Activity) error {
	activity.ID = time.Now().UnixNano()
	activity.CreatedAt = time.Now().UTC()

	if _, err := s.coll.InsertOne(ctx, activity); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, filter Filter) ([]models.Activity, error) {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"content": pattern},
			bson.M{"category": pattern},
		}
	}
	if filter.Date != "" {
		start, end, ok := dayWindow(filter.Date, s.loc)
		if !ok {
			return []models.Activity{}, nil
		}
		query["created_at"] = bson.M{"$gte": start, "$lt": end}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}})
	if filter.Limit > 0 {
		opts = opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts = opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer cursor.Close(ctx)

	activities := make([]models.Activity, 0)
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	for i := range activities {
		activities[i].CreatedAt = activities[i].CreatedAt.UTC()
	}
	return activities, nil
}

func (s *MongoStore) Get(ctx context.Context, id int64) (*models.Activity, error) {
	var a models.Activity
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

// DistinctDays walks recent records newest-first and buckets them into
// local calendar days; the zone conversion happens in Go.
func (s *MongoStore) DistinctDays(ctx context.Context, limit int) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"created_at": 1})

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity days: %w", err)
	}
	defer cursor.Close(ctx)

	days := make([]string, 0, limit)
	seen := make(map[string]bool)
	for cursor.Next(ctx) {
		var doc struct {
			CreatedAt time.Time `bson:"created_at"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode activity: %w", err)
		}
		day := localDay(doc.CreatedAt, s.loc)
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
		if len(days) >= limit {
			break
		}
	}
	return days, cursor.Err()
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
