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

const assignmentCollectionName = "workout_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository.
type mongoAssignmentRepository struct {
	db          *mongo.Database
	collection  *mongo.Collection
	completions *mongo.Collection
}

// NewMongoAssignmentRepository creates a new assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		db:          db,
		collection:  db.Collection(assignmentCollectionName),
		completions: db.Collection(completionCollectionName),
	}
}

// CreateWithCompletions inserts the assignment and one ASSIGNED completion
// row per trainee inside a session transaction, so a failure leaves neither
// the assignment nor a partial completion set behind.
func (r *mongoAssignmentRepository) CreateWithCompletions(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error) {
	if assignment.CoachID == primitive.NilObjectID || len(assignment.TraineeIDs) == 0 {
		return primitive.NilObjectID, errors.New("assignment requires coachId and at least one trainee")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	completions := make([]interface{}, 0, len(assignment.TraineeIDs))
	for _, traineeID := range assignment.TraineeIDs {
		completions = append(completions, &domain.WorkoutCompletion{
			ID:           primitive.NewObjectID(),
			AssignmentID: assignment.ID,
			TraineeID:    traineeID,
			CompletedAt:  nil,
			CreatedAt:    now,
		})
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return primitive.NilObjectID, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.InsertOne(sc, assignment); err != nil {
			return nil, err
		}
		if _, err := r.completions.InsertMany(sc, completions); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	return assignment.ID, nil
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	var assignment domain.WorkoutAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByCoachID retrieves all assignments created by a coach, newest date first.
func (r *mongoAssignmentRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutAssignment, error) {
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.WorkoutAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetByTraineeAndDateRange retrieves assignments targeting the trainee with
// date in the half-open interval [from, to), newest first. The caller
// computes the interval from the reference timezone's midnight.
func (r *mongoAssignmentRepository) GetByTraineeAndDateRange(ctx context.Context, traineeID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutAssignment, error) {
	filter := bson.M{
		"traineeIds": traineeID,
		"date":       bson.M{"$gte": from, "$lt": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.WorkoutAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetByTraineeID retrieves all assignments targeting a trainee, newest date first.
func (r *mongoAssignmentRepository) GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.WorkoutAssignment, error) {
	filter := bson.M{"traineeIds": traineeID}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.WorkoutAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Multikey index over the trainee set plus date range queries
			Keys:    bson.D{{Key: "traineeIds", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
