package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookmarket/models"
)

func (s *Store) InsertReservation(ctx context.Context, r *models.Reservation) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.reservations.InsertOne(ctx, r)
	return err
}

func (s *Store) FindReservation(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	var r models.Reservation
	ok, err := findOne(ctx, s.reservations, bson.M{"_id": id}, &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) ListReservationsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reservation, error) {
	return findAll[models.Reservation](ctx, s.reservations, bson.M{"userId": userID}, newestFirst("reservedAt"))
}

func (s *Store) ListReservationsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Reservation, error) {
	return findAll[models.Reservation](ctx, s.reservations, bson.M{"ownerId": ownerID}, newestFirst("reservedAt"))
}

func (s *Store) SetReservationStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus) (*models.Reservation, error) {
	return s.updateReservation(ctx, bson.M{"_id": id}, status)
}

func (s *Store) TransitionReservation(ctx context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, error) {
	return s.updateReservation(ctx, bson.M{"_id": id, "status": from}, to)
}

func (s *Store) updateReservation(ctx context.Context, filter bson.M, status models.ReservationStatus) (*models.Reservation, error) {
	var r models.Reservation
	ok, err := findOneAndUpdate(ctx, s.reservations, filter,
		bson.M{"$set": bson.M{"status": status}}, false, &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

// ExpireReservations flips pending reservations whose deadline is before t.
func (s *Store) ExpireReservations(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.reservations.UpdateMany(ctx,
		bson.M{
			"status":         models.ReservationPending,
			"pickupDeadline": bson.M{"$lt": t},
		},
		bson.M{"$set": bson.M{"status": models.ReservationExpired}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) DeleteReservation(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.reservations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
