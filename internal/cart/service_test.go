package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mhs-fashion/storefront-backend/internal/catalog"
	pkgerrors "github.com/mhs-fashion/storefront-backend/pkg/errors"
)

// memoryRepository mimics the atomic contract of the mongo repository: each
// call mutates under one lock, the append path rejects a size that is already
// present with a duplicate-key error.
type memoryRepository struct {
	mu   sync.Mutex
	docs map[string]*Document

	incrementCalls int
	appendCalls    int
	failIncrement  error
	failAppend     error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{docs: map[string]*Document{}}
}

func docKey(email, productID string) string {
	return email + "|" + productID
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

func (r *memoryRepository) EnsureIndexes(ctx context.Context) error { return nil }

func (r *memoryRepository) IncrementLine(ctx context.Context, email, productID, size string, delta int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incrementCalls++
	if r.failIncrement != nil {
		return false, r.failIncrement
	}

	doc, ok := r.docs[docKey(email, productID)]
	if !ok {
		return false, nil
	}
	for i := range doc.Lines {
		if doc.Lines[i].Size == size {
			doc.Lines[i].Quantity += delta
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) AppendLine(ctx context.Context, email, productID string, line Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendCalls++
	if r.failAppend != nil {
		return r.failAppend
	}

	key := docKey(email, productID)
	doc, ok := r.docs[key]
	if !ok {
		r.docs[key] = &Document{
			ID:        primitive.NewObjectID(),
			Email:     email,
			ProductID: productID,
			Lines:     []Line{line},
		}
		return nil
	}
	for _, existing := range doc.Lines {
		if existing.Size == line.Size {
			return duplicateKeyError()
		}
	}
	doc.Lines = append(doc.Lines, line)
	return nil
}

func (r *memoryRepository) Find(ctx context.Context, email, productID string) ([]Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Document{}
	for _, doc := range r.docs {
		if doc.Email != email {
			continue
		}
		if productID != "" && doc.ProductID != productID {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (r *memoryRepository) Insert(ctx context.Context, doc map[string]any) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (r *memoryRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, doc := range r.docs {
		if doc.ID == id {
			delete(r.docs, key)
			return 1, nil
		}
	}
	return 0, nil
}

type stubDisplayLoader struct {
	gotIDs []primitive.ObjectID
	items  []catalog.DisplayItem
	err    error
	calls  int
}

func (s *stubDisplayLoader) FindDisplayByIDs(ctx context.Context, ids []primitive.ObjectID) ([]catalog.DisplayItem, error) {
	s.calls++
	s.gotIDs = ids
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func newTestService(t *testing.T, repo Repository, display displayLoader) Service {
	t.Helper()
	svc, err := NewService(repo, display)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func (r *memoryRepository) lines(t *testing.T, email, productID string) []Line {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docKey(email, productID)]
	if !ok {
		t.Fatalf("no document for %s/%s", email, productID)
	}
	return append([]Line(nil), doc.Lines...)
}

func TestUpsertLineMergesSameSize(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, &stubDisplayLoader{})
	ctx := context.Background()

	base := UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "M", Quantity: 2}
	if err := svc.UpsertLine(ctx, base); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	base.Quantity = 3
	if err := svc.UpsertLine(ctx, base); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	lines := repo.lines(t, "a@b.c", "p1")
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", lines[0].Quantity)
	}
}

func TestUpsertLineAppendsNewSize(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, &stubDisplayLoader{})
	ctx := context.Background()

	if err := svc.UpsertLine(ctx, UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "M", Quantity: 5}); err != nil {
		t.Fatalf("upsert M: %v", err)
	}
	if err := svc.UpsertLine(ctx, UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "L", Quantity: 1}); err != nil {
		t.Fatalf("upsert L: %v", err)
	}

	lines := repo.lines(t, "a@b.c", "p1")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	bysize := map[string]int64{}
	for _, line := range lines {
		bysize[line.Size] = line.Quantity
	}
	if bysize["M"] != 5 || bysize["L"] != 1 {
		t.Fatalf("unexpected quantities: %v", bysize)
	}
}

func TestUpsertLineKeepsMetadata(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, &stubDisplayLoader{})

	input := UpsertLineInput{
		Email:     "a@b.c",
		ProductID: "p1",
		Size:      "XL",
		Quantity:  1,
		Meta:      map[string]any{"color": "navy", "img": "x.png"},
	}
	if err := svc.UpsertLine(context.Background(), input); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	lines := repo.lines(t, "a@b.c", "p1")
	if got := lines[0].Meta["color"]; got != "navy" {
		t.Fatalf("expected metadata to survive the append, got %v", got)
	}
}

func TestUpsertLineConcurrentSameKey(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, &stubDisplayLoader{})

	const workers = 32
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- svc.UpsertLine(context.Background(), UpsertLineInput{
				Email:     "a@b.c",
				ProductID: "p1",
				Size:      "M",
				Quantity:  1,
			})
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("concurrent upsert: %v", err)
		}
	}

	lines := repo.lines(t, "a@b.c", "p1")
	if len(lines) != 1 {
		t.Fatalf("expected one line after %d concurrent upserts, got %d", workers, len(lines))
	}
	if lines[0].Quantity != workers {
		t.Fatalf("expected quantity %d, got %d", workers, lines[0].Quantity)
	}
}

func TestUpsertLineRetriesAfterAppendConflict(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, &stubDisplayLoader{})
	ctx := context.Background()

	// Seed the line between the first increment miss and the append by
	// making the append report a duplicate key, as a racing writer would.
	if err := svc.UpsertLine(ctx, UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "M", Quantity: 1}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
	repo.mu.Lock()
	repo.docs[docKey("a@b.c", "p1")].Lines[0].Size = "L"
	repo.failAppend = duplicateKeyError()
	repo.mu.Unlock()

	err := svc.UpsertLine(ctx, UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "M", Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict after exhausted retry, got %v", err)
	}
	if repo.incrementCalls != 3 {
		t.Fatalf("expected one retry increment, got %d increment calls", repo.incrementCalls)
	}
}

func TestUpsertLineValidation(t *testing.T) {
	svc := newTestService(t, newMemoryRepository(), &stubDisplayLoader{})

	cases := []struct {
		name  string
		input UpsertLineInput
	}{
		{"missing email", UpsertLineInput{ProductID: "p1", Size: "M", Quantity: 1}},
		{"missing product", UpsertLineInput{Email: "a@b.c", Size: "M", Quantity: 1}},
		{"missing size", UpsertLineInput{Email: "a@b.c", ProductID: "p1", Quantity: 1}},
		{"zero quantity", UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "M"}},
		{"negative quantity", UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "M", Quantity: -2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.UpsertLine(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpsertLineWrapsStoreFailure(t *testing.T) {
	repo := newMemoryRepository()
	repo.failIncrement = errors.New("socket closed")
	svc := newTestService(t, repo, &stubDisplayLoader{})

	err := svc.UpsertLine(context.Background(), UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "M", Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestListCartsRequiresEmail(t *testing.T) {
	svc := newTestService(t, newMemoryRepository(), &stubDisplayLoader{})

	_, err := svc.ListCarts(context.Background(), "  ", "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListCartsNarrowsByProduct(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, &stubDisplayLoader{})
	ctx := context.Background()

	for _, productID := range []string{"p1", "p2"} {
		if err := svc.UpsertLine(ctx, UpsertLineInput{Email: "a@b.c", ProductID: productID, Size: "M", Quantity: 1}); err != nil {
			t.Fatalf("seed %s: %v", productID, err)
		}
	}

	all, err := svc.ListCarts(ctx, "a@b.c", "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two documents, got %d", len(all))
	}

	one, err := svc.ListCarts(ctx, "a@b.c", "p2")
	if err != nil {
		t.Fatalf("list one: %v", err)
	}
	if len(one) != 1 || one[0].ProductID != "p2" {
		t.Fatalf("expected only p2, got %+v", one)
	}
}

func TestDeleteCartReportsMatchedCount(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(t, repo, &stubDisplayLoader{})
	ctx := context.Background()

	if err := svc.UpsertLine(ctx, UpsertLineInput{Email: "a@b.c", ProductID: "p1", Size: "M", Quantity: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	docs, err := svc.ListCarts(ctx, "a@b.c", "p1")
	if err != nil || len(docs) != 1 {
		t.Fatalf("seed lookup: %v (%d docs)", err, len(docs))
	}

	count, err := svc.DeleteCart(ctx, docs[0].ID.Hex())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected deletedCount 1, got %d", count)
	}

	count, err = svc.DeleteCart(ctx, docs[0].ID.Hex())
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected deletedCount 0 for a missing document, got %d", count)
	}
}

func TestDeleteCartRejectsMalformedID(t *testing.T) {
	svc := newTestService(t, newMemoryRepository(), &stubDisplayLoader{})

	_, err := svc.DeleteCart(context.Background(), "not-a-hex-id")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveDisplayLinesDropsInvalidIDs(t *testing.T) {
	valid := primitive.NewObjectID()
	display := &stubDisplayLoader{
		items: []catalog.DisplayItem{{ID: valid, Name: "polo"}},
	}
	svc := newTestService(t, newMemoryRepository(), display)

	items, err := svc.ResolveDisplayLines(context.Background(), []string{
		"garbage", valid.Hex(), "", valid.Hex(),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if len(display.gotIDs) != 1 || display.gotIDs[0] != valid {
		t.Fatalf("expected a single deduplicated id, got %v", display.gotIDs)
	}
}

func TestResolveDisplayLinesEmptyWithoutStoreCall(t *testing.T) {
	display := &stubDisplayLoader{}
	svc := newTestService(t, newMemoryRepository(), display)

	items, err := svc.ResolveDisplayLines(context.Background(), []string{"nope", ""})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", items)
	}
	if display.calls != 0 {
		t.Fatalf("expected no loader call, got %d", display.calls)
	}
}

func TestResolveDisplayLinesWrapsLoaderFailure(t *testing.T) {
	display := &stubDisplayLoader{err: fmt.Errorf("cursor lost")}
	svc := newTestService(t, newMemoryRepository(), display)

	_, err := svc.ResolveDisplayLines(context.Background(), []string{primitive.NewObjectID().Hex()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubDisplayLoader{}); err == nil {
		t.Fatalf("expected error for nil repository")
	}
	if _, err := NewService(newMemoryRepository(), nil); err == nil {
		t.Fatalf("expected error for nil display loader")
	}
}
