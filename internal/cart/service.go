package cart

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mhs-fashion/storefront-backend/internal/catalog"
	pkgerrors "github.com/mhs-fashion/storefront-backend/pkg/errors"
)

type displayLoader interface {
	FindDisplayByIDs(ctx context.Context, ids []primitive.ObjectID) ([]catalog.DisplayItem, error)
}

// Service exposes cart reconciliation and enumeration operations.
type Service interface {
	// UpsertLine merges quantity into the existing (email, product, size)
	// line or appends a new one. Callers cannot observe which branch fired.
	UpsertLine(ctx context.Context, input UpsertLineInput) error
	ListCarts(ctx context.Context, email, productID string) ([]Document, error)
	CreateDocument(ctx context.Context, doc map[string]any) (string, error)
	DeleteCart(ctx context.Context, hexID string) (int64, error)
	// ResolveDisplayLines drops syntactically invalid catalog ids and
	// projects the rest to display fields. Result order is store-determined.
	ResolveDisplayLines(ctx context.Context, rawIDs []string) ([]catalog.DisplayItem, error)
}

type service struct {
	repo    Repository
	display displayLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, display displayLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if display == nil {
		return nil, fmt.Errorf("display loader required")
	}
	return &service{repo: repo, display: display}, nil
}

// UpsertLineInput captures one requested cart line mutation.
type UpsertLineInput struct {
	Email     string
	ProductID string
	Size      string
	Quantity  int64
	Meta      map[string]any
}

func (i UpsertLineInput) validate() error {
	if strings.TrimSpace(i.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(i.ProductID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(i.Size) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if i.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").
			WithDetails(map[string]any{"quantity": i.Quantity})
	}
	return nil
}

func (s *service) UpsertLine(ctx context.Context, input UpsertLineInput) error {
	if err := input.validate(); err != nil {
		return err
	}

	matched, err := s.repo.IncrementLine(ctx, input.Email, input.ProductID, input.Size, input.Quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart line")
	}
	if matched {
		return nil
	}

	line := Line{Size: input.Size, Quantity: input.Quantity, Meta: input.Meta}
	err = s.repo.AppendLine(ctx, input.Email, input.ProductID, line)
	if err == nil {
		return nil
	}
	if !pkgerrors.IsDuplicateKey(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append cart line")
	}

	// Another request won the append race; the line exists now, so merge.
	matched, err = s.repo.IncrementLine(ctx, input.Email, input.ProductID, input.Size, input.Quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retry increment after append conflict")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeConflict, "cart line changed concurrently, retry the request")
	}
	return nil
}

func (s *service) ListCarts(ctx context.Context, email, productID string) ([]Document, error) {
	if strings.TrimSpace(email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	documents, err := s.repo.Find(ctx, email, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart documents")
	}
	return documents, nil
}

func (s *service) CreateDocument(ctx context.Context, doc map[string]any) (string, error) {
	if len(doc) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart document must not be empty")
	}

	id, err := s.repo.Insert(ctx, doc)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart document")
	}
	return id.Hex(), nil
}

func (s *service) DeleteCart(ctx context.Context, hexID string) (int64, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hexID))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cart id").
			WithDetails(map[string]any{"id": hexID})
	}

	count, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart document")
	}
	return count, nil
}

func (s *service) ResolveDisplayLines(ctx context.Context, rawIDs []string) ([]catalog.DisplayItem, error) {
	seen := map[primitive.ObjectID]struct{}{}
	ids := make([]primitive.ObjectID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
		if err != nil {
			continue // invalid ids are dropped, never errored
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return []catalog.DisplayItem{}, nil
	}

	items, err := s.display.FindDisplayByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve display lines")
	}
	return items, nil
}
