package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookmarket/models"
)

func (s *Store) InsertOwner(ctx context.Context, o *models.Owner) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := s.owners.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateKey
	}
	return err
}

func (s *Store) FindOwner(ctx context.Context, id primitive.ObjectID) (*models.Owner, error) {
	return s.findOwner(ctx, bson.M{"_id": id})
}

func (s *Store) FindOwnerByUser(ctx context.Context, userID primitive.ObjectID) (*models.Owner, error) {
	return s.findOwner(ctx, bson.M{"user": userID})
}

func (s *Store) findOwner(ctx context.Context, filter bson.M) (*models.Owner, error) {
	var o models.Owner
	ok, err := findOne(ctx, s.owners, filter, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOwners(ctx context.Context) ([]models.Owner, error) {
	return findAll[models.Owner](ctx, s.owners, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// ownerSet turns the non-nil fields of an update into a $set document.
func ownerSet(u models.OwnerUpdate) bson.M {
	set := bson.M{}
	add := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	add("fullName", u.FullName)
	add("address", u.Address)
	add("mobileNo", u.MobileNo)
	add("bookShopName", u.BookShopName)
	add("district", u.District)
	add("city", u.City)
	add("nic", u.NIC)
	add("nicFile", u.NICFile)
	if u.Status != nil {
		set["status"] = *u.Status
	}
	return set
}

func (s *Store) UpdateOwner(ctx context.Context, id primitive.ObjectID, u models.OwnerUpdate) (*models.Owner, error) {
	set := ownerSet(u)
	if len(set) == 0 {
		return s.FindOwner(ctx, id)
	}
	var o models.Owner
	ok, err := findOneAndUpdate(ctx, s.owners, bson.M{"_id": id}, bson.M{"$set": set}, false, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func (s *Store) DeleteOwner(ctx context.Context, id primitive.ObjectID) (*models.Owner, error) {
	var o models.Owner
	err := s.owners.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
