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

const documentCollectionName = "documents"

// mongoDocumentRepository implements repository.DocumentRepository.
type mongoDocumentRepository struct {
	collection *mongo.Collection
}

// NewMongoDocumentRepository creates a new document repository backed by MongoDB.
func NewMongoDocumentRepository(db *mongo.Database) repository.DocumentRepository {
	return &mongoDocumentRepository{
		collection: db.Collection(documentCollectionName),
	}
}

// Create inserts a new document metadata record.
func (r *mongoDocumentRepository) Create(ctx context.Context, doc *domain.Document) (primitive.ObjectID, error) {
	if doc.CoachID == primitive.NilObjectID || doc.Title == "" || doc.Slug == "" {
		return primitive.NilObjectID, errors.New("document requires coachId, title, and slug")
	}

	doc.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.RecipientIDs == nil {
		doc.RecipientIDs = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted document ID")
	}
	return insertedID, nil
}

// GetByID retrieves a document by its ID.
func (r *mongoDocumentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Document, error) {
	var doc domain.Document
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// GetBySlug retrieves a document by its unique slug.
func (r *mongoDocumentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Document, error) {
	var doc domain.Document
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// GetByCoachID retrieves documents authored by a coach, newest first.
func (r *mongoDocumentRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Document, error) {
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []domain.Document
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetByRecipientID retrieves documents distributed to a user, newest first.
func (r *mongoDocumentRepository) GetByRecipientID(ctx context.Context, userID primitive.ObjectID) ([]domain.Document, error) {
	filter := bson.M{"recipientIds": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []domain.Document
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// SetRecipients replaces the resolved recipient set of a document.
func (r *mongoDocumentRepository) SetRecipients(ctx context.Context, id primitive.ObjectID, recipientIDs []primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{
		"recipientIds": recipientIDs,
		"updatedAt":    time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDocumentIndexes creates necessary indexes for the documents collection.
func EnsureDocumentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "recipientIds", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
