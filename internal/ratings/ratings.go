package ratings

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Rating is one storefront review record.
type Rating struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name    string             `bson:"name,omitempty" json:"name,omitempty"`
	Rating  float64            `bson:"rating,omitempty" json:"rating,omitempty"`
	Comment string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Image   string             `bson:"image,omitempty" json:"image,omitempty"`
}

// Repository reads the ratings collection.
type Repository interface {
	List(ctx context.Context) ([]Rating, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(collection *mongo.Collection) Repository {
	return &mongoRepository{collection: collection}
}

func (m *mongoRepository) List(ctx context.Context) ([]Rating, error) {
	cursor, err := m.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}

	records := []Rating{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}
	return records, nil
}
