package catalog

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrItemNotFound = errors.New("catalog item not found")

// Repository defines read access to the items collection. Samples are
// uniform without replacement and capped at the matching collection size.
type Repository interface {
	CountByCategory(ctx context.Context, category string) (int64, error)
	SampleByGender(ctx context.Context, gender string, size int) ([]Item, error)
	FindByCategory(ctx context.Context, category string) ([]Item, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Item, error)
	SampleBySpeciality(ctx context.Context, speciality string, size int) ([]Item, error)
	SampleByCategory(ctx context.Context, category string, size int) ([]Item, error)
	FindDisplayByIDs(ctx context.Context, ids []primitive.ObjectID) ([]DisplayItem, error)
}
