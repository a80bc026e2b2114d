package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookmarket/models"
)

func (s *Store) FindCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var c models.Cart
	ok, err := findOne(ctx, s.carts, bson.M{"userId": userID}, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// SaveCart writes the item list only so a concurrent address update survives.
func (s *Store) SaveCart(ctx context.Context, c *models.Cart) error {
	items := c.Items
	if items == nil {
		items = []models.CartItem{}
	}
	res, err := s.carts.UpdateOne(ctx,
		bson.M{"userId": c.UserID},
		bson.M{"$set": bson.M{"items": items}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		c.ID = id
	}
	return nil
}

func (s *Store) SetItemQuantity(ctx context.Context, userID, bookID primitive.ObjectID, qty int) (*models.Cart, error) {
	var c models.Cart
	ok, err := findOneAndUpdate(ctx, s.carts,
		bson.M{"userId": userID, "items.bookId": bookID},
		bson.M{"$set": bson.M{"items.$.quantity": qty}},
		false, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Store) PullItem(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Cart, error) {
	var c models.Cart
	ok, err := findOneAndUpdate(ctx, s.carts,
		bson.M{"userId": userID},
		bson.M{"$pull": bson.M{"items": bson.M{"bookId": bookID}}},
		false, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteCart(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.carts.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

func (s *Store) SetCartAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) (*models.Cart, error) {
	var c models.Cart
	_, err := findOneAndUpdate(ctx, s.carts,
		bson.M{"userId": userID},
		bson.M{
			"$set":         bson.M{"address": addr},
			"$setOnInsert": bson.M{"items": []models.CartItem{}},
		},
		true, &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
