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

type ShareLinkRepo interface {
	Create(ctx context.Context, link *model.ShareLink) error
	GetByID(ctx context.Context, id string) (*model.ShareLink, error)
	GetByToken(ctx context.Context, token string) (*model.ShareLink, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*model.ShareLink, error)
	Update(ctx context.Context, link *model.ShareLink) error
	IncrementAttempts(ctx context.Context, id string) error
}

type shareLinkRepo struct {
	collection *mongo.Collection
}

func NewShareLinkRepo(db *mongo.Database) ShareLinkRepo {
	return &shareLinkRepo{
		collection: db.Collection("share_links"),
	}
}

func (r *shareLinkRepo) Create(ctx context.Context, link *model.ShareLink) error {
	now := time.Now()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, link)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		link.ID = oid.Hex()
	}
	return nil
}

func (r *shareLinkRepo) GetByID(ctx context.Context, id string) (*model.ShareLink, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var link model.ShareLink
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&link)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	link.ID = id
	return &link, nil
}

func (r *shareLinkRepo) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	var link model.ShareLink
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&link)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *shareLinkRepo) ListByCreator(ctx context.Context, creatorID string) ([]*model.ShareLink, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"createdById": creatorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []*model.ShareLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *shareLinkRepo) Update(ctx context.Context, link *model.ShareLink) error {
	oid, err := primitive.ObjectIDFromHex(link.ID)
	if err != nil {
		return err
	}

	link.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"token":     link.Token,
		"active":    link.Active,
		"expiresAt": link.ExpiresAt,
		"updatedAt": link.UpdatedAt,
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *shareLinkRepo) IncrementAttempts(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"attemptCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}
