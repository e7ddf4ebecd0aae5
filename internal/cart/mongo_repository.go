package cart

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository builds a cart repository over the carts collection.
func NewMongoRepository(collection *mongo.Collection) Repository {
	return &mongoRepository{collection: collection}
}

func (m *mongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "email", Value: 1},
				{Key: "productId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}

	return nil
}

func (m *mongoRepository) IncrementLine(ctx context.Context, email, productID, size string, delta int64) (bool, error) {
	filter := bson.M{
		"email":      email,
		"productId":  productID,
		"lines.size": size,
	}
	update := bson.M{
		"$inc": bson.M{"lines.$.quantity": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to increment cart line: %w", err)
	}

	return result.MatchedCount > 0, nil
}

func (m *mongoRepository) AppendLine(ctx context.Context, email, productID string, line Line) error {
	now := time.Now()

	// The $ne guard keeps two writers from pushing the same size twice: the
	// loser no longer matches and its upsert-insert trips the unique
	// (email, productId) index instead.
	filter := bson.M{
		"email":      email,
		"productId":  productID,
		"lines.size": bson.M{"$ne": line.Size},
	}
	update := bson.M{
		"$push":        bson.M{"lines": line},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to append cart line: %w", err)
	}

	return nil
}

func (m *mongoRepository) Find(ctx context.Context, email, productID string) ([]Document, error) {
	filter := bson.M{"email": email}
	if productID != "" {
		filter["productId"] = productID
	}

	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart documents: %w", err)
	}

	documents := []Document{}
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("failed to decode cart documents: %w", err)
	}

	return documents, nil
}

func (m *mongoRepository) Insert(ctx context.Context, doc map[string]any) (primitive.ObjectID, error) {
	result, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert cart document: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

func (m *mongoRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete cart document: %w", err)
	}

	return result.DeletedCount, nil
}
