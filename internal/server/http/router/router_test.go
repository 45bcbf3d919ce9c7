package router

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dealerflow/internal/domain/model"
	"github.com/polkiloo/dealerflow/internal/server/http/handlers"
	"github.com/polkiloo/dealerflow/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/dealerflow/internal/test"
)

func newEngine(facade testhelpers.DealerFacadeStub) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := Setup(facade, testhelpers.TokenParserStub{Actor: model.Actor{UserID: 1}}, logger)
	gin.SetMode(gin.TestMode)
	return engine
}

func TestSetupRoutes(t *testing.T) {
	engine := newEngine(testhelpers.DealerFacadeStub{})

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{method: http.MethodGet, path: "/api/orders/sales_order/1", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/orders/purchase_order/1/payments", body: `{"total_payment_amount":"100.00"}`, status: http.StatusOK},
		{method: http.MethodPost, path: "/api/orders/quote/1/status", body: `{"status":"Submitted"}`, status: http.StatusOK},
		{method: http.MethodGet, path: "/api/vehicles/1", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/vehicles/1/calculation", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/vehicles/stock", body: `{"vehicle_ids":[1]}`, status: http.StatusOK},
		{method: http.MethodGet, path: "/api/calculations/export?vehicle_id=1", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/ownerships", body: `{"ownable_type":"quote","ownable_id":1,"user_id":2}`, status: http.StatusCreated},
		{method: http.MethodPost, path: "/api/ownerships/1/accept", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/ownerships/1/reject", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/quotes/1/invitations", body: `{"customer_id":2}`, status: http.StatusCreated},
		{method: http.MethodPost, path: "/api/invitations/1/send", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/invitations/1/accept", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/invitations/1/reject", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/schema/ownership", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/health", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			req.Header.Set("Authorization", "Bearer token")
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			resp := httptest.NewRecorder()
			engine.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			if resp.Header().Get(middleware.RequestIDHeader) == "" {
				t.Fatal("expected request id header")
			}
		})
	}
}

func TestSetupRequiresToken(t *testing.T) {
	engine := newEngine(testhelpers.DealerFacadeStub{})

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/vehicles/1", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected health to be public, got %d", resp.Code)
	}
}

func TestSetupCompression(t *testing.T) {
	var got []int64
	engine := newEngine(testhelpers.DealerFacadeStub{RecalculateFn: func(_ context.Context, ids []int64) (map[model.Stock][]int64, error) {
		got = ids
		return map[model.Stock][]int64{model.StockInStock: ids}, nil
	}})

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte(`{"vehicle_ids":[4,5]}`))
	_ = gz.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/vehicles/stock", &buf)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || len(got) != 2 {
		t.Fatalf("expected decompressed request, got %d %v", resp.Code, got)
	}
	if resp.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, got %q", resp.Header().Get("Content-Encoding"))
	}
}

func TestSetupCORS(t *testing.T) {
	engine := newEngine(testhelpers.DealerFacadeStub{})

	req := httptest.NewRequest(http.MethodOptions, "/api/vehicles/1", nil)
	req.Header.Set("Origin", "https://dealer.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)

	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin, got %q", resp.Header().Get("Access-Control-Allow-Origin"))
	}
}

var _ handlers.DealerFacade = testhelpers.DealerFacadeStub{}
