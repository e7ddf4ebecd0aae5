package catalog

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is one catalog entry. The storefront reads it as-is; this service
// never mutates the items collection.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Gender      string             `bson:"gender" json:"gender"`
	Speciality  string             `bson:"speciality" json:"speciality"`
	Image       string             `bson:"image" json:"image"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	OfferPrice  float64            `bson:"offerPrice" json:"offerPrice"`
}

// DisplayItem is the projection used for cart summary rendering.
type DisplayItem struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Image      string             `bson:"image" json:"image"`
	OfferPrice float64            `bson:"offerPrice" json:"offerPrice"`
}
