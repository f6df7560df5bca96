package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-restaurant-ordering/apperr"
	"go-restaurant-ordering/models"

	"github.com/google/go-cmp/cmp"
)

type recorded struct {
	header http.Header
	body   map[string]any
}

func newTestClient(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "key-123", time.Second)
	c.now = func() time.Time { return time.Date(2026, 10, 18, 4, 5, 6, 789e6, time.UTC) }
	return c, rec
}

func sampleDraft() models.DraftOrder {
	return models.DraftOrder{
		CustomerName:    "  王小明 ",
		CustomerPhone:   "0912345678 ",
		Lines:           []models.CartLine{{Name: "滷肉飯", Price: 35, Icon: "🍚", Quantity: 2}},
		PickupTime:      "2026-10-18T18:30",
		DeliveryAddress: "   ",
		Notes:           " 少辣 ",
	}
}

func TestCreateOrder_Success(t *testing.T) {
	t.Parallel()
	c, rec := newTestClient(t, http.StatusOK, `{"success":true,"data":{"orderId":"A1","totalAmount":150}}`)

	res, err := c.CreateOrder(context.Background(), "req-1", sampleDraft(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.OrderID != "A1" || res.TotalAmount != 150 {
		t.Fatalf("unexpected result %+v", res)
	}

	if got := rec.header.Get("X-Api-Key"); got != "key-123" {
		t.Fatalf("api key header = %q", got)
	}
	if got := rec.header.Get("Content-Type"); got != "text/plain;charset=utf-8" {
		t.Fatalf("content type = %q", got)
	}
	if got := rec.header.Get("X-Request-Id"); got != "req-1" {
		t.Fatalf("request id = %q", got)
	}

	want := map[string]any{
		"action": "createOrder",
		"orderData": map[string]any{
			"customerName":       "王小明",
			"customerPhone":      "0912345678",
			"customerLineUserId": "Not-Bound",
			"items":              []any{map[string]any{"name": "滷肉飯", "quantity": float64(2)}},
			"pickupTime":         "2026-10-18T18:30",
			"deliveryAddress":    "",
			"notes":              "少辣",
			"timestamp":          "2026-10-18T04:05:06.789Z",
		},
	}
	if diff := cmp.Diff(want, rec.body); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateOrder_ItemsCarryNoPrices(t *testing.T) {
	t.Parallel()
	c, rec := newTestClient(t, http.StatusOK, `{"success":true,"data":{"orderId":"A1","totalAmount":1}}`)
	if _, err := c.CreateOrder(context.Background(), "", sampleDraft(), "U1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	data := rec.body["orderData"].(map[string]any)
	if data["customerLineUserId"] != "U1" {
		t.Fatalf("line user id = %v", data["customerLineUserId"])
	}
	for _, raw := range data["items"].([]any) {
		item := raw.(map[string]any)
		if len(item) != 2 {
			t.Fatalf("item must carry only name and quantity, got %v", item)
		}
	}
}

func TestCreateOrder_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind string
	}{
		{name: "rejected", status: http.StatusOK, body: `{"success":false,"message":"out of stock"}`, wantKind: "backend_rejected"},
		{name: "rejected_error_field", status: http.StatusOK, body: `{"success":false,"error":"bad key"}`, wantKind: "backend_rejected"},
		{name: "missing_data", status: http.StatusOK, body: `{"success":true}`, wantKind: "backend_rejected"},
		{name: "server_error", status: http.StatusBadGateway, body: `oops`, wantKind: "transport"},
		{name: "not_json", status: http.StatusOK, body: `<html>`, wantKind: "transport"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newTestClient(t, tt.status, tt.body)
			_, err := c.CreateOrder(context.Background(), "", sampleDraft(), "")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperr.Kind(err); got != tt.wantKind {
				t.Fatalf("kind = %q, want %q (%v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestCreateOrder_RejectedMessage(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.StatusOK, `{"success":false,"message":"out of stock"}`)
	_, err := c.CreateOrder(context.Background(), "", sampleDraft(), "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "out of stock" {
		t.Fatalf("expected APIError with backend message, got %v", err)
	}
}

func TestCreateOrder_MissingOrderID(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.StatusOK, `{"success":true,"data":{"totalAmount":70}}`)
	res, err := c.CreateOrder(context.Background(), "", sampleDraft(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.OrderID != UnknownOrderID || res.TotalAmount != 70 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCreateOrder_Unreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "k", time.Second)
	_, err := c.CreateOrder(context.Background(), "", sampleDraft(), "")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestCreateOrder_Timeout(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "k", 50*time.Millisecond)
	_, err := c.CreateOrder(context.Background(), "", sampleDraft(), "")
	if apperr.Kind(err) != "timeout" {
		t.Fatalf("expected timeout, got %q (%v)", apperr.Kind(err), err)
	}
}

func TestTransportError_Kind(t *testing.T) {
	tests := []struct {
		name string
		err  *TransportError
		want string
	}{
		{"deadline", &TransportError{Err: fmt.Errorf("post: %w", context.DeadlineExceeded)}, "timeout"},
		{"refused", &TransportError{Err: errors.New("connection refused")}, "transport"},
		{"status", &TransportError{StatusCode: http.StatusBadGateway}, "transport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Kind(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetOrders_LenientAmounts(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.StatusOK, `{"success":true,"data":[
		{"orderId":"O1","subtotal":120.0,"deliveryFee":"30","totalAmount":"150"},
		{"orderId":"O2","subtotal":null,"totalAmount":35.0}
	]}`)

	records, err := c.GetOrders(context.Background(), "", HistoryQuery{LineUserID: "U1"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(records) != 2 || records[0].TotalAmount != 150 || records[0].DeliveryFee != 30 || records[0].Subtotal != 120 || records[1].TotalAmount != 35 {
		t.Fatalf("amounts not decoded: %+v", records)
	}
}

func TestCreateOrder_FractionalTotal(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.StatusOK, `{"success":true,"data":{"orderId":"A1","totalAmount":150.0}}`)
	res, err := c.CreateOrder(context.Background(), "", sampleDraft(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.TotalAmount != 150 {
		t.Fatalf("total = %d", res.TotalAmount)
	}
}

func TestGetOrders(t *testing.T) {
	t.Parallel()
	c, rec := newTestClient(t, http.StatusOK, `{"success":true,"data":[{"orderId":"O1","createdAt":"2024-01-01"},{"orderId":"O2","createdAt":"2024-01-03"}]}`)

	records, err := c.GetOrders(context.Background(), "", HistoryQuery{CustomerPhone: "0912345678", StartDate: "2024-01-01", EndDate: "2024-01-07"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(records) != 2 || records[0].OrderID != "O1" {
		t.Fatalf("records must come back in backend order, got %+v", records)
	}

	want := map[string]any{
		"action":        "getOrders",
		"customerPhone": "0912345678",
		"startDate":     "2024-01-01",
		"endDate":       "2024-01-07",
	}
	if diff := cmp.Diff(want, rec.body); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestGetOrders_Rejected(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.StatusOK, `{"success":false,"message":"unauthorized"}`)
	if _, err := c.GetOrders(context.Background(), "", HistoryQuery{LineUserID: "U1"}); apperr.Kind(err) != "backend_rejected" {
		t.Fatalf("expected backend_rejected, got %v", err)
	}
}
