package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mhs-fashion/storefront-backend/internal/cart"
	"github.com/mhs-fashion/storefront-backend/internal/catalog"
	"github.com/mhs-fashion/storefront-backend/internal/ratings"
	"github.com/mhs-fashion/storefront-backend/pkg/config"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
	"github.com/mhs-fashion/storefront-backend/pkg/metrics"
)

type routedCatalog struct {
	lastOp string
}

func (s *routedCatalog) CategoryCounts(ctx context.Context) (map[string]int64, error) {
	s.lastOp = "counts"
	return map[string]int64{}, nil
}

func (s *routedCatalog) SampleByGender(ctx context.Context, gender string) ([]catalog.Item, error) {
	s.lastOp = "gender:" + gender
	return []catalog.Item{}, nil
}

func (s *routedCatalog) ItemsByCategory(ctx context.Context, category string) ([]catalog.Item, error) {
	s.lastOp = "category:" + category
	return []catalog.Item{}, nil
}

func (s *routedCatalog) ItemByID(ctx context.Context, hexID string) (*catalog.Item, error) {
	s.lastOp = "item:" + hexID
	return &catalog.Item{}, nil
}

func (s *routedCatalog) SampleBySpeciality(ctx context.Context, speciality string) ([]catalog.Item, error) {
	s.lastOp = "speciality:" + speciality
	return []catalog.Item{}, nil
}

func (s *routedCatalog) RelatedItems(ctx context.Context, category string) ([]catalog.Item, error) {
	s.lastOp = "related:" + category
	return []catalog.Item{}, nil
}

type routedCart struct {
	lastOp string
}

func (s *routedCart) UpsertLine(ctx context.Context, input cart.UpsertLineInput) error {
	s.lastOp = "upsert:" + input.ProductID
	return nil
}

func (s *routedCart) ListCarts(ctx context.Context, email, productID string) ([]cart.Document, error) {
	s.lastOp = "list:" + email + ":" + productID
	return []cart.Document{}, nil
}

func (s *routedCart) CreateDocument(ctx context.Context, doc map[string]any) (string, error) {
	s.lastOp = "create"
	return primitive.NewObjectID().Hex(), nil
}

func (s *routedCart) DeleteCart(ctx context.Context, hexID string) (int64, error) {
	s.lastOp = "delete:" + hexID
	return 1, nil
}

func (s *routedCart) ResolveDisplayLines(ctx context.Context, rawIDs []string) ([]catalog.DisplayItem, error) {
	s.lastOp = "resolve"
	return []catalog.DisplayItem{}, nil
}

type routedUsers struct{}

func (s *routedUsers) Register(ctx context.Context, doc map[string]any) (string, error) {
	return primitive.NewObjectID().Hex(), nil
}

type routedRatings struct{}

func (s *routedRatings) List(ctx context.Context) ([]ratings.Rating, error) {
	return []ratings.Rating{}, nil
}

type okPinger struct{}

func (p *okPinger) Ping(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *routedCatalog, *routedCart) {
	t.Helper()

	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	httpMetrics := metrics.NewHTTPMetrics(prometheus.NewRegistry())

	catalogService := &routedCatalog{}
	cartService := &routedCart{}

	handler := NewRouter(
		cfg, logg, &okPinger{}, &okPinger{}, httpMetrics,
		catalogService, cartService, &routedUsers{}, &routedRatings{},
	)
	return handler, catalogService, cartService
}

func TestRouterDispatch(t *testing.T) {
	handler, catalogService, cartService := newTestRouter(t)

	productID := primitive.NewObjectID().Hex()
	cases := []struct {
		method string
		target string
		body   string
		status int
		lastOp func() string
		wantOp string
	}{
		{http.MethodGet, "/", "", http.StatusOK, nil, ""},
		{http.MethodGet, "/health/live", "", http.StatusOK, nil, ""},
		{http.MethodGet, "/health/ready", "", http.StatusOK, nil, ""},
		{http.MethodGet, "/items-count", "", http.StatusOK, func() string { return catalogService.lastOp }, "counts"},
		{http.MethodGet, "/category/women", "", http.StatusOK, func() string { return catalogService.lastOp }, "gender:women"},
		{http.MethodGet, "/category/men/panjabi", "", http.StatusOK, func() string { return catalogService.lastOp }, "category:panjabi"},
		{http.MethodGet, "/product/" + productID, "", http.StatusOK, func() string { return catalogService.lastOp }, "item:" + productID},
		{http.MethodGet, "/items/premium", "", http.StatusOK, func() string { return catalogService.lastOp }, "speciality:premium"},
		{http.MethodGet, "/related/polo", "", http.StatusOK, func() string { return catalogService.lastOp }, "related:polo"},
		{http.MethodGet, "/ratings", "", http.StatusOK, nil, ""},
		{http.MethodPost, "/users", `{"email":"a@b.c"}`, http.StatusCreated, nil, ""},
		{http.MethodGet, "/carts?email=a%40b.c", "", http.StatusOK, func() string { return cartService.lastOp }, "list:a@b.c:"},
		{http.MethodPost, "/carts", `{"email":"a@b.c"}`, http.StatusOK, func() string { return cartService.lastOp }, "create"},
		{http.MethodGet, "/cart?email=a%40b.c&id=p1", "", http.StatusOK, func() string { return cartService.lastOp }, "list:a@b.c:p1"},
		{http.MethodPatch, "/cart?email=a%40b.c&id=p1", `{"size":"M","quantity":1}`, http.StatusOK, func() string { return cartService.lastOp }, "upsert:p1"},
		{http.MethodGet, "/cartMenu?id=" + productID, "", http.StatusOK, func() string { return cartService.lastOp }, "resolve"},
		{http.MethodDelete, "/carts/" + productID, "", http.StatusOK, func() string { return cartService.lastOp }, "delete:" + productID},
		{http.MethodGet, "/metrics", "", http.StatusOK, nil, ""},
		{http.MethodGet, "/no-such-route", "", http.StatusNotFound, nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.target, body)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.lastOp != nil && tc.lastOp() != tc.wantOp {
				t.Fatalf("expected operation %q, got %q", tc.wantOp, tc.lastOp())
			}
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	handler, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a generated request id header")
	}
}

func TestRouterAllowsKnownOrigin(t *testing.T) {
	handler, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/items-count", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected the origin to be allowed, got %q", got)
	}
}
