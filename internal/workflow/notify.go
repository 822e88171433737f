package workflow

import (
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/models"
)

// DefaultDeepLinkBase is the messaging deep link the verification notice is handed to.
const DefaultDeepLinkBase = "https://wa.me/"

// Notification is the message an admin sends to the customer after verifying a payment.
type Notification struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
	Link  string `json:"link"`
}

func paymentVerifiedNotice(base string, order *models.Order) *Notification {
	text := fmt.Sprintf("Hello %s, the payment for your order #%d (total %s) has been verified. "+
		"Your order is now on delivery to %s. Thank you for shopping with us!",
		order.CustomerName(), order.ID, order.TotalAmount.String(), order.Address)

	phone := ""
	if order.User != nil {
		phone = digits(order.User.Phone)
	}
	if base == "" {
		base = DefaultDeepLinkBase
	}
	link := strings.TrimRight(base, "/") + "/" + phone + "?text=" + url.QueryEscape(text)
	return &Notification{Phone: phone, Text: text, Link: link}
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
