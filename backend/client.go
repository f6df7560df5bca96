// Package backend is the client for the restaurant's order backend. Both
// operations POST a JSON envelope, sent as text/plain, to a single endpoint
// authenticated by a static API key header.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-restaurant-ordering/models"
)

const (
	actionCreateOrder = "createOrder"
	actionGetOrders   = "getOrders"

	// NotBound is sent as the LINE user id when the visitor has none.
	NotBound = "Not-Bound"
	// UnknownOrderID stands in for a missing order id in a success response.
	UnknownOrderID = "N/A"

	apiKeyHeader    = "X-Api-Key"
	requestIDHeader = "X-Request-Id"
	contentType     = "text/plain;charset=utf-8"
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// OrderItem is the only per-line data sent to the backend. The backend
// prices the order itself.
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type orderData struct {
	CustomerName       string      `json:"customerName"`
	CustomerPhone      string      `json:"customerPhone"`
	CustomerLineUserID string      `json:"customerLineUserId"`
	Items              []OrderItem `json:"items"`
	PickupTime         string      `json:"pickupTime"`
	DeliveryAddress    string      `json:"deliveryAddress"`
	Notes              string      `json:"notes"`
	Timestamp          string      `json:"timestamp"`
}

type createOrderRequest struct {
	Action    string    `json:"action"`
	OrderData orderData `json:"orderData"`
}

type createOrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    *struct {
		OrderID     string        `json:"orderId"`
		TotalAmount models.Amount `json:"totalAmount"`
	} `json:"data,omitempty"`
}

// CreateOrderResult carries the backend's authoritative outputs.
type CreateOrderResult struct {
	OrderID     string
	TotalAmount int64
}

// CreateOrder submits draft. lineUserID may be empty. requestID is echoed in
// a header for log correlation and may be empty.
func (c *Client) CreateOrder(ctx context.Context, requestID string, draft models.DraftOrder, lineUserID string) (*CreateOrderResult, error) {
	if lineUserID == "" {
		lineUserID = NotBound
	}
	items := make([]OrderItem, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		items = append(items, OrderItem{Name: l.Name, Quantity: l.Quantity})
	}
	body := createOrderRequest{
		Action: actionCreateOrder,
		OrderData: orderData{
			CustomerName:       strings.TrimSpace(draft.CustomerName),
			CustomerPhone:      strings.TrimSpace(draft.CustomerPhone),
			CustomerLineUserID: lineUserID,
			Items:              items,
			PickupTime:         draft.PickupTime,
			DeliveryAddress:    strings.TrimSpace(draft.DeliveryAddress),
			Notes:              strings.TrimSpace(draft.Notes),
			Timestamp:          c.now().UTC().Format(timestampLayout),
		},
	}

	var resp createOrderResponse
	if err := c.post(ctx, actionCreateOrder, requestID, body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Action: actionCreateOrder, Message: firstNonEmpty(resp.Message, resp.Error, "order submission failed")}
	}
	if resp.Data == nil {
		return nil, &APIError{Action: actionCreateOrder, Message: "malformed response: missing data"}
	}
	result := &CreateOrderResult{OrderID: resp.Data.OrderID, TotalAmount: int64(resp.Data.TotalAmount)}
	if result.OrderID == "" {
		result.OrderID = UnknownOrderID
	}
	return result, nil
}

// HistoryQuery selects past orders by phone, LINE user id, or both.
// Dates are YYYY-MM-DD.
type HistoryQuery struct {
	CustomerPhone string `json:"customerPhone,omitempty"`
	LineUserID    string `json:"lineUserId,omitempty"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
}

type getOrdersRequest struct {
	Action string `json:"action"`
	HistoryQuery
}

type getOrdersResponse struct {
	Success bool                   `json:"success"`
	Data    []models.HistoryRecord `json:"data"`
	Message string                 `json:"message,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// GetOrders returns matching records in backend order. Sorting for display
// is the caller's job.
func (c *Client) GetOrders(ctx context.Context, requestID string, q HistoryQuery) ([]models.HistoryRecord, error) {
	var resp getOrdersResponse
	if err := c.post(ctx, actionGetOrders, requestID, getOrdersRequest{Action: actionGetOrders, HistoryQuery: q}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, &APIError{Action: actionGetOrders, Message: firstNonEmpty(resp.Message, resp.Error, "query failed")}
	}
	return resp.Data, nil
}

func (c *Client) post(ctx context.Context, action, requestID string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Action: action, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(apiKeyHeader, c.apiKey)
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &TransportError{Action: action, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Action: action, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
