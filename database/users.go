package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bookmarket/models"
)

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateKey
	}
	return err
}

func (s *Store) FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	ok, err := findOne(ctx, s.users, filter, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *Store) SetUserAddress(ctx context.Context, id primitive.ObjectID, addr models.Address) (*models.User, error) {
	var u models.User
	ok, err := findOneAndUpdate(ctx, s.users,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"address":   addr,
			"updatedAt": time.Now().UTC(),
		}},
		false, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
