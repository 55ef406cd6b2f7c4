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

const feedbackCollectionName = "feedback"

// mongoFeedbackRepository implements repository.FeedbackRepository.
type mongoFeedbackRepository struct {
	collection *mongo.Collection
}

// NewMongoFeedbackRepository creates a new feedback repository backed by MongoDB.
func NewMongoFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &mongoFeedbackRepository{
		collection: db.Collection(feedbackCollectionName),
	}
}

// Create inserts a new feedback entry.
func (r *mongoFeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) (primitive.ObjectID, error) {
	if fb.CompletionID == primitive.NilObjectID || fb.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("feedback requires completionId and coachId")
	}

	fb.ID = primitive.NewObjectID()
	if fb.SentAt.IsZero() {
		fb.SentAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, fb)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted feedback ID")
	}
	return insertedID, nil
}

// List retrieves feedback ordered by sentAt descending, optionally
// filtered by trainee and/or assignment.
func (r *mongoFeedbackRepository) List(ctx context.Context, traineeID, assignmentID *primitive.ObjectID) ([]domain.Feedback, error) {
	filter := bson.M{}
	if traineeID != nil {
		filter["traineeId"] = *traineeID
	}
	if assignmentID != nil {
		filter["assignmentId"] = *assignmentID
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.Feedback
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureFeedbackIndexes creates necessary indexes for the feedback collection.
func EnsureFeedbackIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "sentAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignmentId", Value: 1}, {Key: "sentAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "completionId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
