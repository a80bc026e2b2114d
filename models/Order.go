// 📁 models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultOrderStatus is applied when the caller does not supply a status.
const DefaultOrderStatus = "Not Completed"

type OrderItem struct {
	BookID     primitive.ObjectID `json:"bookId" bson:"bookId"`
	OwnerID    primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Title      string             `json:"title" bson:"title"`
	CoverImage string             `json:"coverImage" bson:"coverImage"`
	Quantity   int                `json:"quantity" bson:"quantity"`
	Price      float64            `json:"price" bson:"price"`
}

type Order struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Items     []OrderItem        `json:"items" bson:"items"`
	Address   Address            `json:"address" bson:"address"`
	Status    string             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Total sums price times quantity over the items. It is informational only;
// nothing persists it.
func (o Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// HasOwner reports whether any item of the order belongs to ownerID.
func (o Order) HasOwner(ownerID primitive.ObjectID) bool {
	for _, it := range o.Items {
		if it.OwnerID == ownerID {
			return true
		}
	}
	return false
}
