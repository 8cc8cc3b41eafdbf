package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "notifications"

// MongoStore is a MongoDB implementation of the Store interface.
// The batched delete is expressed as an ID-scoped DeleteMany: MongoDB has
// no limit on DeleteMany, so each batch first selects up to limit IDs.
type MongoStore struct {
	coll *mongo.Collection
}

// mongoNotification is the stored document shape. Contractor IDs are kept
// as strings so filters stay readable in the shell and index-friendly.
type mongoNotification struct {
	ID           string     `bson:"_id"`
	ContractorID string     `bson:"contractor_id"`
	Type         Type       `bson:"type"`
	Title        string     `bson:"title"`
	Message      string     `bson:"message"`
	Read         bool       `bson:"read"`
	ReadAt       *time.Time `bson:"read_at,omitempty"`
	Archived     bool       `bson:"archived"`
	ArchivedAt   *time.Time `bson:"archived_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
}

func toDocument(n Notification) mongoNotification {
	return mongoNotification{
		ID:           n.ID,
		ContractorID: n.ContractorID.String(),
		Type:         n.Type,
		Title:        n.Title,
		Message:      n.Message,
		Read:         n.Read,
		ReadAt:       n.ReadAt,
		Archived:     n.Archived,
		ArchivedAt:   n.ArchivedAt,
		CreatedAt:    n.CreatedAt,
	}
}

func (d mongoNotification) toNotification() (Notification, error) {
	contractorID, err := uuid.Parse(d.ContractorID)
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		ID:           d.ID,
		ContractorID: contractorID,
		Type:         d.Type,
		Title:        d.Title,
		Message:      d.Message,
		Read:         d.Read,
		ReadAt:       d.ReadAt,
		Archived:     d.Archived,
		ArchivedAt:   d.ArchivedAt,
		CreatedAt:    d.CreatedAt,
	}, nil
}

// NewMongoStore creates a Mongo-backed notification store.
// Panics if db is nil to fail fast during initialization.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if db == nil {
		panic("notifications: mongo database is required")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{coll: db.Collection(collection)}
}

func (s *MongoStore) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return errors.New("notification ID is required")
	}
	if notif.ContractorID == uuid.Nil {
		return errors.New("contractor ID is required")
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	_, err := s.coll.InsertOne(ctx, toDocument(notif))
	return err
}

func (s *MongoStore) List(ctx context.Context, contractorID uuid.UUID, opts ListOptions) ([]Notification, error) {
	filter := bson.M{
		"contractor_id": contractorID.String(),
		"archived":      bson.M{"$ne": true},
	}
	if opts.OnlyUnread {
		filter["read"] = false
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoNotification
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(docs))
	for _, d := range docs {
		n, err := d.toNotification()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, contractorID uuid.UUID, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}

	_, err := s.coll.UpdateMany(ctx,
		bson.M{
			"contractor_id": contractorID.String(),
			"_id":           bson.M{"$in": notifIDs},
			"read":          false,
		},
		bson.M{"$set": bson.M{"read": true, "read_at": time.Now()}},
	)
	return err
}

func (s *MongoStore) CountUnread(ctx context.Context, contractorID uuid.UUID) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{
		"contractor_id": contractorID.String(),
		"read":          false,
		"archived":      bson.M{"$ne": true},
	})
}

func (s *MongoStore) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{
		"archived":   bson.M{"$ne": true},
		"created_at": bson.M{"$lt": cutoff},
	})
}

func (s *MongoStore) MarkArchivedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{
			"archived":   bson.M{"$ne": true},
			"created_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{"archived": true, "archived_at": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) DeleteReadOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	findOpts := options.Find().SetProjection(bson.M{"_id": 1})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx,
		bson.M{
			"read":       true,
			"created_at": bson.M{"$lt": cutoff},
		},
		findOpts,
	)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	res, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
