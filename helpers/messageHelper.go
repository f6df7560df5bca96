package helpers

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go-restaurant-ordering/models"
)

const DisplayLayout = "2006/01/02 15:04"

// ShopInfo is the restaurant contact block appended to shared confirmations.
type ShopInfo struct {
	Name    string
	Address string
	Hours   string
	Phone   string
}

var DefaultShop = ShopInfo{
	Name:    "台灣小吃店",
	Address: "台灣小吃店",
	Hours:   "10:00-21:00",
	Phone:   "02-1234-5678",
}

// FormatDisplayTime renders a form or backend timestamp for people. Values
// that cannot be parsed are returned unchanged.
func FormatDisplayTime(value string, loc *time.Location) string {
	t, err := models.ParseTimestamp(value, loc)
	if err != nil {
		return value
	}
	return t.In(loc).Format(DisplayLayout)
}

// FormatOrderItems is the one-line item summary on the confirmation page.
func FormatOrderItems(lines []models.CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s %s x%d ($%d)", l.Icon, l.Name, l.Quantity, l.LineTotal()))
	}
	return strings.Join(parts, ", ")
}

// ConfirmationMessage is the chat message pushed to the customer after a
// successful order.
func ConfirmationMessage(order models.ConfirmedOrder, loc *time.Location) string {
	items := make([]string, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, fmt.Sprintf("%s %s x%d", l.Icon, l.Name, l.Quantity))
	}
	var b strings.Builder
	b.WriteString("感謝訂購！\n\n")
	fmt.Fprintf(&b, "📋 訂單編號：%s\n", order.OrderID)
	fmt.Fprintf(&b, "👤 顧客姓名：%s\n\n", order.CustomerName)
	fmt.Fprintf(&b, "📦 訂單內容：\n%s\n\n", strings.Join(items, "\n"))
	fmt.Fprintf(&b, "💰 總金額：$%d\n", order.TotalAmount)
	fmt.Fprintf(&b, "⏰ 取餐時間：%s", FormatDisplayTime(order.PickupTime, loc))
	return b.String()
}

// ShareText is the confirmation the customer can forward or copy.
func ShareText(order models.ConfirmedOrder, shop ShopInfo, loc *time.Location) string {
	items := make([]string, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, fmt.Sprintf("▫️ %s %s x%d - $%d", l.Icon, l.Name, l.Quantity, l.LineTotal()))
	}
	delivery := "自取"
	if order.DeliveryAddress != "" {
		delivery = "外送地址：" + order.DeliveryAddress
	}
	notes := order.Notes
	if notes == "" {
		notes = "無"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🍽️ %s - 訂單確認\n\n", shop.Name)
	fmt.Fprintf(&b, "📋 訂單編號：%s\n", order.OrderID)
	fmt.Fprintf(&b, "👤 顧客姓名：%s\n", order.CustomerName)
	fmt.Fprintf(&b, "📞 聯絡電話：%s\n\n", order.CustomerPhone)
	fmt.Fprintf(&b, "📦 訂單內容：\n%s\n\n", strings.Join(items, "\n"))
	fmt.Fprintf(&b, "💰 最終總金額：$%d\n", order.TotalAmount)
	fmt.Fprintf(&b, "⏰ 取餐時間：%s\n", FormatDisplayTime(order.PickupTime, loc))
	fmt.Fprintf(&b, "📍 %s\n", delivery)
	fmt.Fprintf(&b, "📝 備註：%s\n\n", notes)
	fmt.Fprintf(&b, "📍 取餐地址：%s\n", shop.Address)
	fmt.Fprintf(&b, "🕒 營業時間：%s\n", shop.Hours)
	fmt.Fprintf(&b, "📞 聯絡電話：%s", shop.Phone)
	return b.String()
}

// ShareURL opens the LINE share sheet prefilled with text.
func ShareURL(text string) string {
	return "https://line.me/R/msg/text/?" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
