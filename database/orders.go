package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookmarket/models"
)

func (s *Store) InsertOrder(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := s.orders.InsertOne(ctx, o)
	return err
}

func (s *Store) FindOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	ok, err := findOne(ctx, s.orders, bson.M{"_id": id}, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return findAll[models.Order](ctx, s.orders, bson.M{"userId": userID}, newestFirst("createdAt"))
}

// ListOrdersByOwner matches orders where any item belongs to the owner.
func (s *Store) ListOrdersByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Order, error) {
	return findAll[models.Order](ctx, s.orders, bson.M{"items.ownerId": ownerID}, newestFirst("createdAt"))
}

func (s *Store) DeleteOrder(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.orders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
