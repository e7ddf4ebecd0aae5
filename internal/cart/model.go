package cart

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document holds every cart line one shopper has for one product. There is
// at most one document per (email, productId) pair, enforced by a unique
// compound index.
type Document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	ProductID string             `bson:"productId" json:"productId"`
	Lines     []Line             `bson:"lines" json:"lines"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Line is one (size, quantity) entry within a document. Within a document
// at most one line exists per size; quantity only ever accumulates.
// Descriptive fields the storefront sends (color, label, ...) ride along
// opaquely in Meta.
type Line struct {
	Size     string         `bson:"size"`
	Quantity int64          `bson:"quantity"`
	Meta     map[string]any `bson:",inline"`
}

type lineAlias struct {
	Size     string `json:"size"`
	Quantity int64  `json:"quantity"`
}

// MarshalJSON flattens Meta next to size and quantity so the storefront
// sees the same shape it submitted.
func (l Line) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(l.Meta)+2)
	for k, v := range l.Meta {
		flat[k] = v
	}
	flat["size"] = l.Size
	flat["quantity"] = l.Quantity
	return json.Marshal(flat)
}

// UnmarshalJSON splits the known fields from the opaque remainder.
func (l *Line) UnmarshalJSON(data []byte) error {
	var known lineAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	delete(flat, "size")
	delete(flat, "quantity")
	if len(flat) == 0 {
		flat = nil
	}
	l.Size = known.Size
	l.Quantity = known.Quantity
	l.Meta = flat
	return nil
}
