package helpers

import (
	"net/url"
	"strings"
	"testing"

	"go-restaurant-ordering/models"
)

func sampleConfirmed() models.ConfirmedOrder {
	return models.ConfirmedOrder{
		DraftOrder: models.DraftOrder{
			CustomerName:  "王小明",
			CustomerPhone: "0912345678",
			Lines: []models.CartLine{
				{Name: "滷肉飯", Price: 35, Icon: "🍚", Quantity: 2},
				{Name: "珍珠奶茶", Price: 45, Icon: "🥤", Quantity: 1},
			},
			PickupTime: "2026-10-18T18:30",
		},
		OrderID:     "A1",
		TotalAmount: 115,
	}
}

func TestFormatOrderItems(t *testing.T) {
	got := FormatOrderItems(sampleConfirmed().Lines)
	want := "🍚 滷肉飯 x2 ($70), 🥤 珍珠奶茶 x1 ($45)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatDisplayTime(t *testing.T) {
	if got := FormatDisplayTime("2026-10-18T18:30", taipei); got != "2026/10/18 18:30" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDisplayTime("not a time", taipei); got != "not a time" {
		t.Fatalf("unparseable values should pass through, got %q", got)
	}
}

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage(sampleConfirmed(), taipei)
	for _, want := range []string{"📋 訂單編號：A1", "🍚 滷肉飯 x2", "💰 總金額：$115", "⏰ 取餐時間：2026/10/18 18:30"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestShareText(t *testing.T) {
	order := sampleConfirmed()
	text := ShareText(order, DefaultShop, taipei)
	if !strings.Contains(text, "📍 自取") || !strings.Contains(text, "📝 備註：無") {
		t.Fatalf("pickup order should say 自取 and 無:\n%s", text)
	}

	order.DeliveryAddress = "台北市信義路1號"
	order.Notes = "不要香菜"
	text = ShareText(order, DefaultShop, taipei)
	if !strings.Contains(text, "外送地址：台北市信義路1號") || !strings.Contains(text, "備註：不要香菜") {
		t.Fatalf("delivery details missing:\n%s", text)
	}
}

func TestShareURL(t *testing.T) {
	text := "a b&c=d\n訂單"
	u := ShareURL(text)
	if strings.Contains(u, "+") {
		t.Fatalf("spaces must be %%20, got %s", u)
	}
	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := url.QueryUnescape(parsed.RawQuery)
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	if got != text {
		t.Fatalf("round trip = %q, want %q", got, text)
	}
}
