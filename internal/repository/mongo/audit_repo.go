package mongo

import (
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const auditCollectionName = "audit_log"

// mongoAuditRepository implements repository.AuditRepository. The
// collection is append-only: no update or delete methods exist.
type mongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates a new audit log repository backed by MongoDB.
func NewMongoAuditRepository(db *mongo.Database) repository.AuditRepository {
	return &mongoAuditRepository{
		collection: db.Collection(auditCollectionName),
	}
}

// Create appends a new audit entry.
func (r *mongoAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) (primitive.ObjectID, error) {
	if entry.Action == "" {
		return primitive.NilObjectID, errors.New("audit entry requires an action")
	}

	entry.ID = primitive.NewObjectID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted audit entry ID")
	}
	return insertedID, nil
}

// List retrieves entries newest first, capped at limit (0 means no cap).
func (r *mongoAuditRepository) List(ctx context.Context, limit int64) ([]domain.AuditEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.AuditEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureAuditIndexes creates necessary indexes for the audit log collection.
func EnsureAuditIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "actorId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
