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

const completionCollectionName = "workout_completions"

// mongoCompletionRepository implements repository.CompletionRepository.
// Rows are created by AssignmentRepository.CreateWithCompletions; this
// repository only reads them and performs the single terminal transition.
type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new completion repository backed by MongoDB.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// GetByID retrieves a completion row by its ID.
func (r *mongoCompletionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutCompletion, error) {
	var completion domain.WorkoutCompletion
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&completion)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &completion, nil
}

// GetByAssignmentAndTrainee retrieves the unique row for the pair.
func (r *mongoCompletionRepository) GetByAssignmentAndTrainee(ctx context.Context, assignmentID, traineeID primitive.ObjectID) (*domain.WorkoutCompletion, error) {
	var completion domain.WorkoutCompletion
	filter := bson.M{"assignmentId": assignmentID, "traineeId": traineeID}

	err := r.collection.FindOne(ctx, filter).Decode(&completion)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &completion, nil
}

// GetByAssignmentID retrieves all completion rows for an assignment.
func (r *mongoCompletionRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.WorkoutCompletion, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"assignmentId": assignmentID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var completions []domain.WorkoutCompletion
	if err = cursor.All(ctx, &completions); err != nil {
		return nil, err
	}
	return completions, nil
}

// GetByTraineeID retrieves all completion rows belonging to a trainee.
func (r *mongoCompletionRepository) GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.WorkoutCompletion, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"traineeId": traineeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var completions []domain.WorkoutCompletion
	if err = cursor.All(ctx, &completions); err != nil {
		return nil, err
	}
	return completions, nil
}

// MarkDone performs the ASSIGNED→DONE transition as a single conditional
// update: completedAt is set only if currently null. Two concurrent calls
// for the same pair therefore produce exactly one modification; the loser
// observes ErrAlreadyDone and the first timestamp stands.
func (r *mongoCompletionRepository) MarkDone(ctx context.Context, assignmentID, traineeID primitive.ObjectID, completedAt time.Time) error {
	filter := bson.M{
		"assignmentId": assignmentID,
		"traineeId":    traineeID,
		"completedAt":  nil,
	}
	update := bson.M{"$set": bson.M{"completedAt": completedAt.UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 1 {
		return nil
	}

	// Nothing matched: either the row is already done or it never existed.
	count, err := r.collection.CountDocuments(ctx, bson.M{"assignmentId": assignmentID, "traineeId": traineeID})
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrAlreadyDone
}

// EnsureCompletionIndexes creates necessary indexes for the completions collection.
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One row per (assignment, trainee) pair
			Keys:    bson.D{{Key: "assignmentId", Value: 1}, {Key: "traineeId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
