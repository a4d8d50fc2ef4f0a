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

// TurnRepo persists the append-only conversation log for a session
type TurnRepo interface {
	Append(ctx context.Context, turn *model.ConversationTurn) error
	ListByInterview(ctx context.Context, interviewID string) ([]*model.ConversationTurn, error)
	DeleteByInterview(ctx context.Context, interviewID string) error
}

type turnRepo struct {
	collection *mongo.Collection
}

func NewTurnRepo(db *mongo.Database) TurnRepo {
	return &turnRepo{
		collection: db.Collection("conversation_turns"),
	}
}

func (r *turnRepo) Append(ctx context.Context, turn *model.ConversationTurn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, turn)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		turn.ID = oid.Hex()
	}
	return nil
}

func (r *turnRepo) ListByInterview(ctx context.Context, interviewID string) ([]*model.ConversationTurn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"interviewId": interviewID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []*model.ConversationTurn
	if err = cursor.All(ctx, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *turnRepo) DeleteByInterview(ctx context.Context, interviewID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"interviewId": interviewID})
	return err
}
