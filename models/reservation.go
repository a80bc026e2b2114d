package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "pending"
	ReservationPickedUp ReservationStatus = "picked_up"
	ReservationExpired  ReservationStatus = "expired"
)

// PickupWindow is how long a reserved copy is held after payment.
const PickupWindow = 7 * 24 * time.Hour

type Reservation struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	BookID         primitive.ObjectID `json:"bookId" bson:"bookId"`
	OwnerID        primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Quantity       int                `json:"quantity" bson:"quantity"`
	ReservationFee float64            `json:"reservationFee" bson:"reservationFee"`
	ReservedAt     time.Time          `json:"reservedAt" bson:"reservedAt"`
	PickupDeadline time.Time          `json:"pickupDeadline" bson:"pickupDeadline"`
	Status         ReservationStatus  `json:"status" bson:"status"`
}

// ReservationWithBook is a reservation with its book joined in. Book is nil
// when the book has since been deleted.
type ReservationWithBook struct {
	Reservation
	Book *Book `json:"book"`
}
