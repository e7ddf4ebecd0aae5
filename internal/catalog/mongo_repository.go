package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository builds a catalog repository over the items collection.
func NewMongoRepository(collection *mongo.Collection) Repository {
	return &mongoRepository{collection: collection}
}

func (m *mongoRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	count, err := m.collection.CountDocuments(ctx, bson.M{"category": category})
	if err != nil {
		return 0, fmt.Errorf("failed to count category %q: %w", category, err)
	}
	return count, nil
}

func (m *mongoRepository) SampleByGender(ctx context.Context, gender string, size int) ([]Item, error) {
	return m.sample(ctx, bson.D{{Key: "gender", Value: gender}}, size)
}

func (m *mongoRepository) SampleBySpeciality(ctx context.Context, speciality string, size int) ([]Item, error) {
	return m.sample(ctx, bson.D{{Key: "speciality", Value: speciality}}, size)
}

func (m *mongoRepository) SampleByCategory(ctx context.Context, category string, size int) ([]Item, error) {
	return m.sample(ctx, bson.D{{Key: "category", Value: category}}, size)
}

// sample runs $match + $sample; $sample caps at the matching set size, so
// undersized collections return everything that matched.
func (m *mongoRepository) sample(ctx context.Context, match bson.D, size int) ([]Item, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}},
	}

	cursor, err := m.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sample items: %w", err)
	}

	items := []Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode sampled items: %w", err)
	}
	return items, nil
}

func (m *mongoRepository) FindByCategory(ctx context.Context, category string) ([]Item, error) {
	cursor, err := m.collection.Find(ctx, bson.M{"category": category})
	if err != nil {
		return nil, fmt.Errorf("failed to find items by category: %w", err)
	}

	items := []Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

func (m *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Item, error) {
	var item Item
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

func (m *mongoRepository) FindDisplayByIDs(ctx context.Context, ids []primitive.ObjectID) ([]DisplayItem, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	projection := bson.M{"name": 1, "image": 1, "offerPrice": 1}

	cursor, err := m.collection.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("failed to find display items: %w", err)
	}

	items := []DisplayItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode display items: %w", err)
	}
	return items, nil
}
