package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/partify/internal/models"
)

func (r *MongoRepo) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = models.NewID()
	}
	t := now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = t
	}
	user.UpdatedAt = t
	_, err := r.DB.Users.InsertOne(ctx, user)
	return mongoErr(err)
}

func (r *MongoRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mongoErr(err)
	}
	return &u, nil
}

func (r *MongoRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.Users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, mongoErr(err)
	}
	return &u, nil
}

func (r *MongoRepo) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, r.DB.Users, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.DB.Users, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *MongoRepo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	res, err := r.DB.Users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isAdmin": isAdmin, "updatedAt": now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.DB.Users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) CountUsers(ctx context.Context) (int64, error) {
	return r.DB.Users.CountDocuments(ctx, bson.M{})
}
