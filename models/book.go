package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID    primitive.ObjectID `json:"owner" bson:"owner"`
	Title      string             `json:"title" bson:"title"`
	Author     string             `json:"author" bson:"author"`
	Price      float64            `json:"price" bson:"price"`
	Stock      int                `json:"stock" bson:"stock"`
	Category   string             `json:"category" bson:"category"`
	ISBN       string             `json:"isbn" bson:"isbn"`
	CoverImage string             `json:"coverImage" bson:"coverImage"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ShopSummary is the slice of an owner profile shown next to a book.
type ShopSummary struct {
	ID           primitive.ObjectID `json:"id"`
	BookShopName string             `json:"bookShopName"`
	City         string             `json:"city"`
	District     string             `json:"district"`
}

// BookDetail is a book with its owner id at the top level and the shop joined in.
type BookDetail struct {
	Book
	OwnerRef primitive.ObjectID `json:"ownerId"`
	Shop     *ShopSummary       `json:"shop,omitempty"`
}
