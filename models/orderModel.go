package models

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PickupLayout is the wall-clock format of the pickup time form field.
const PickupLayout = "2006-01-02T15:04"

// DraftOrder is an order being assembled by the customer and not yet
// accepted by the backend.
type DraftOrder struct {
	CustomerName    string     `json:"customerName"`
	CustomerPhone   string     `json:"customerPhone"`
	Lines           []CartLine `json:"items"`
	PickupTime      string     `json:"pickupTime"`
	DeliveryAddress string     `json:"deliveryAddress"`
	Notes           string     `json:"notes"`
}

// ConfirmedOrder is a draft the backend accepted. TotalAmount is the
// backend's figure and may differ from EstimatedTotal.
type ConfirmedOrder struct {
	DraftOrder
	OrderID        string `json:"orderId"`
	TotalAmount    int64  `json:"totalAmount"`
	EstimatedTotal int64  `json:"estimatedTotal"`
}

// TotalMismatch reports whether the confirmed total differs from the
// estimate shown before submission.
func (o ConfirmedOrder) TotalMismatch() bool {
	return o.TotalAmount != o.EstimatedTotal
}

// HistoryRecord is a past order as returned by the backend. Items is a
// preformatted string.
type HistoryRecord struct {
	OrderID         string `json:"orderId"`
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	LineUserID      string `json:"lineUserId"`
	Items           string `json:"items"`
	Subtotal        Amount `json:"subtotal"`
	DeliveryFee     Amount `json:"deliveryFee"`
	TotalAmount     Amount `json:"totalAmount"`
	PickupTime      string `json:"pickupTime"`
	DeliveryAddress string `json:"deliveryAddress"`
	Notes           string `json:"notes"`
	Status          string `json:"status"`
	CreatedAt       string `json:"createdAt"`
	AdminNotes      string `json:"adminNotes"`
}

// Amount is a whole-dollar figure written by the backend. Besides integers
// it accepts numbers with a fraction (rounded) and numeric strings; null, empty
// and non-numeric strings read as zero so one bad cell cannot sink a whole
// response.
type Amount int64

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(unquoted), 64)
		if err != nil {
			*a = 0
			return nil
		}
		*a = Amount(math.Round(f))
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*a = Amount(math.Round(f))
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	PickupLayout,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes the backend and the form
// produce. Zone-less values are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// SortHistory orders records newest first by CreatedAt. Records whose
// CreatedAt cannot be parsed go last, keeping their relative order.
func SortHistory(records []HistoryRecord, loc *time.Location) {
	created := make(map[int]time.Time, len(records))
	for i, r := range records {
		if t, err := ParseTimestamp(r.CreatedAt, loc); err == nil {
			created[i] = t
		}
	}
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, okA := created[idx[a]]
		tb, okB := created[idx[b]]
		if okA != okB {
			return okA
		}
		return ta.After(tb)
	})
	sorted := make([]HistoryRecord, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	copy(records, sorted)
}
