package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interviewsim/internal/model"
)

type InterviewRepo interface {
	Create(ctx context.Context, iv *model.Interview) error
	GetByID(ctx context.Context, id string) (*model.Interview, error)
	Update(ctx context.Context, iv *model.Interview) error
	SetQuestionsReady(ctx context.Context, id string) error
	SetReview(ctx context.Context, id string, review *model.Review, finalScore float64) error
	ListByCandidate(ctx context.Context, candidateID string) ([]*model.Interview, error)
}

type interviewRepo struct {
	collection *mongo.Collection
}

func NewInterviewRepo(db *mongo.Database) InterviewRepo {
	return &interviewRepo{
		collection: db.Collection("interviews"),
	}
}

func (r *interviewRepo) Create(ctx context.Context, iv *model.Interview) error {
	now := time.Now()
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = now
	}
	iv.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, iv)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		iv.ID = oid.Hex()
	}
	return nil
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var iv model.Interview
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&iv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	iv.ID = id
	return &iv, nil
}

func (r *interviewRepo) Update(ctx context.Context, iv *model.Interview) error {
	oid, err := primitive.ObjectIDFromHex(iv.ID)
	if err != nil {
		return err
	}

	iv.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"status":         iv.Status,
		"questionsReady": iv.QuestionsReady,
		"overallScore":   iv.OverallScore,
		"aiReview":       iv.Review,
		"aiFinalScore":   iv.FinalScore,
		"reviewedAt":     iv.ReviewedAt,
		"updatedAt":      iv.UpdatedAt,
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *interviewRepo) SetQuestionsReady(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"questionsReady": true,
		"status":         model.InterviewInProgress,
		"updatedAt":      time.Now(),
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *interviewRepo) SetReview(ctx context.Context, id string, review *model.Review, finalScore float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"aiReview":     review,
		"aiFinalScore": finalScore,
		"reviewedAt":   &now,
		"updatedAt":    now,
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *interviewRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.Interview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"candidateId": candidateID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var interviews []*model.Interview
	if err = cursor.All(ctx, &interviews); err != nil {
		return nil, err
	}
	return interviews, nil
}
