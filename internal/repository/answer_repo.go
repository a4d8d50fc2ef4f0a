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

type AnswerRepo interface {
	// UpsertByQuestion writes the answer for a question, replacing any
	// previous text (one answer per question)
	UpsertByQuestion(ctx context.Context, answer *model.Answer) error
	GetByQuestion(ctx context.Context, questionID string) (*model.Answer, error)
	ListByQuestions(ctx context.Context, questionIDs []string) ([]*model.Answer, error)
	SetScore(ctx context.Context, questionID string, score int) error
	DeleteByQuestions(ctx context.Context, questionIDs []string) error
}

type answerRepo struct {
	collection *mongo.Collection
}

func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	return &answerRepo{
		collection: db.Collection("answers"),
	}
}

func (r *answerRepo) UpsertByQuestion(ctx context.Context, answer *model.Answer) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"text":      answer.Text,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"questionId": answer.QuestionID,
			"createdAt":  now,
		},
	}
	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, bson.M{"questionId": answer.QuestionID}, update, opts)
	if err != nil {
		return err
	}
	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		answer.ID = oid.Hex()
	}
	return nil
}

func (r *answerRepo) GetByQuestion(ctx context.Context, questionID string) (*model.Answer, error) {
	var answer model.Answer
	err := r.collection.FindOne(ctx, bson.M{"questionId": questionID}).Decode(&answer)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepo) ListByQuestions(ctx context.Context, questionIDs []string) ([]*model.Answer, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"questionId": bson.M{"$in": questionIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []*model.Answer
	if err = cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepo) SetScore(ctx context.Context, questionID string, score int) error {
	update := bson.M{"$set": bson.M{
		"score":     score,
		"updatedAt": time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"questionId": questionID}, update)
	return err
}

func (r *answerRepo) DeleteByQuestions(ctx context.Context, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"questionId": bson.M{"$in": questionIDs}})
	return err
}
