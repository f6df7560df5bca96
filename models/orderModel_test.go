package models

import (
	"encoding/json"
	"testing"
	"time"
)

var cst = time.FixedZone("CST", 8*60*60)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-03T10:20:30.123Z", time.Date(2024, 1, 3, 10, 20, 30, 123000000, time.UTC)},
		{"2024-01-03T10:20:30", time.Date(2024, 1, 3, 10, 20, 30, 0, cst)},
		{"2024-01-03T10:20", time.Date(2024, 1, 3, 10, 20, 0, 0, cst)},
		{"2024-01-03 10:20:30", time.Date(2024, 1, 3, 10, 20, 30, 0, cst)},
		{"2024-01-03", time.Date(2024, 1, 3, 0, 0, 0, 0, cst)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in, cst)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseTimestamp("yesterday", cst); err == nil {
		t.Fatal("expected error")
	}
}

func TestSortHistory(t *testing.T) {
	records := []HistoryRecord{
		{OrderID: "a", CreatedAt: "2024-01-01"},
		{OrderID: "bad1", CreatedAt: "n/a"},
		{OrderID: "c", CreatedAt: "2024-01-03T08:00:00.000Z"},
		{OrderID: "b", CreatedAt: "2024-01-02 09:00:00"},
		{OrderID: "bad2", CreatedAt: ""},
	}
	SortHistory(records, cst)

	want := []string{"c", "b", "a", "bad1", "bad2"}
	for i, id := range want {
		if records[i].OrderID != id {
			t.Fatalf("position %d: got %s, want %s (all: %+v)", i, records[i].OrderID, id, records)
		}
	}
}

func TestConfirmedOrder_TotalMismatch(t *testing.T) {
	o := ConfirmedOrder{TotalAmount: 150, EstimatedTotal: 150}
	if o.TotalMismatch() {
		t.Fatal("equal totals should not mismatch")
	}
	o.EstimatedTotal = 120
	if !o.TotalMismatch() {
		t.Fatal("expected mismatch")
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
	}{
		{`150`, 150},
		{`150.0`, 150},
		{`149.6`, 150},
		{`"150"`, 150},
		{`" 80.5 "`, 81},
		{`null`, 0},
		{`""`, 0},
		{`"n/a"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var rec HistoryRecord
			if err := json.Unmarshal([]byte(`{"orderId":"A1","totalAmount":`+tt.in+`}`), &rec); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if rec.TotalAmount != tt.want {
				t.Fatalf("got %d, want %d", rec.TotalAmount, tt.want)
			}
		})
	}

	var a Amount
	if err := json.Unmarshal([]byte(`true`), &a); err == nil {
		t.Fatal("expected error for a boolean amount")
	}
}
