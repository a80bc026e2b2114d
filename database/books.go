package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookmarket/models"
)

func (s *Store) InsertBook(ctx context.Context, b *models.Book) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	_, err := s.books.InsertOne(ctx, b)
	return err
}

func (s *Store) FindBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var b models.Book
	ok, err := findOne(ctx, s.books, bson.M{"_id": id}, &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (s *Store) FindBooks(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error) {
	if len(ids) == 0 {
		return []models.Book{}, nil
	}
	return findAll[models.Book](ctx, s.books, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Store) ListBooksByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Book, error) {
	return findAll[models.Book](ctx, s.books, bson.M{"owner": ownerID}, newestFirst("createdAt"))
}

func (s *Store) ReplaceBook(ctx context.Context, b *models.Book) (bool, error) {
	res, err := s.books.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.books.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
