package users

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	pkgerrors "github.com/mhs-fashion/storefront-backend/pkg/errors"
)

var validate = validator.New()

// Repository stores registration records.
type Repository interface {
	Insert(ctx context.Context, doc map[string]any) (primitive.ObjectID, error)
}

// Service registers storefront users. Records are stored as submitted; only
// the email key is checked since it doubles as the cart owner key.
type Service interface {
	Register(ctx context.Context, doc map[string]any) (string, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(collection *mongo.Collection) Repository {
	return &mongoRepository{collection: collection}
}

func (m *mongoRepository) Insert(ctx context.Context, doc map[string]any) (primitive.ObjectID, error) {
	result, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert user: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, doc map[string]any) (string, error) {
	email, _ := doc["email"].(string)
	if err := validate.Var(email, "required,email"); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required").
			WithDetails(map[string]any{"field": "email"})
	}

	id, err := s.repo.Insert(ctx, doc)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert user")
	}
	return id.Hex(), nil
}
