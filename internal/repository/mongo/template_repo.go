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

const templateCollectionName = "workout_templates"

// mongoTemplateRepository implements repository.TemplateRepository.
type mongoTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateRepository creates a new template repository backed by MongoDB.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

// Create inserts a new workout template.
func (r *mongoTemplateRepository) Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	if tpl.CoachID == primitive.NilObjectID || tpl.Title == "" {
		return primitive.NilObjectID, errors.New("template requires coachId and title")
	}

	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template ID")
	}
	return insertedID, nil
}

// GetByID retrieves a template by its ID.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	var tpl domain.WorkoutTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// GetByCoachID retrieves all templates authored by a coach, newest first.
func (r *mongoTemplateRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.WorkoutTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update modifies a template's title and content. Existing assignments keep
// their snapshots; nothing here touches the assignments collection.
func (r *mongoTemplateRepository) Update(ctx context.Context, tpl *domain.WorkoutTemplate) error {
	if tpl.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}

	filter := bson.M{"_id": tpl.ID}
	update := bson.M{"$set": bson.M{
		"title":     tpl.Title,
		"content":   tpl.Content,
		"updatedAt": time.Now().UTC(),
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

// EnsureTemplateIndexes creates necessary indexes for the templates collection.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
