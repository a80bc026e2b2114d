// 📁 models/cart.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem keeps a title/price snapshot of the book taken when it was last added.
type CartItem struct {
	BookID     primitive.ObjectID `json:"bookId" bson:"bookId"`
	Title      string             `json:"title" bson:"title"`
	CoverImage string             `json:"coverImage,omitempty" bson:"coverImage,omitempty"`
	Quantity   int                `json:"quantity" bson:"quantity"`
	Price      float64            `json:"price" bson:"price"`
}

// Cart is the single per-buyer cart document.
type Cart struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID  primitive.ObjectID `json:"userId" bson:"userId"`
	Items   []CartItem         `json:"items" bson:"items"`
	Address *Address           `json:"address,omitempty" bson:"address,omitempty"`
}

// ItemIndex returns the position of bookID in the cart, or -1.
func (c *Cart) ItemIndex(bookID primitive.ObjectID) int {
	for i, it := range c.Items {
		if it.BookID == bookID {
			return i
		}
	}
	return -1
}
