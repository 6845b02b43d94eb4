package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", ErrInvalidOrderStatus
	}
	return status, nil
}

type Order struct {
	ID        string      `json:"_id"`
	Price     Money       `json:"price"`
	Status    OrderStatus `json:"status"`
	Size      string      `json:"size"`
	Qty       int         `json:"qty"`
	Color     OrderColor  `json:"color"`
	User      *OrderUser  `json:"user_id,omitempty"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

type OrderColor struct {
	Color         string     `json:"color"`
	Price         OrderPrice `json:"price"`
	ProductImages []string   `json:"product_images"`
}

type OrderPrice struct {
	OriginalPrice   Money `json:"original_price"`
	DiscountedPrice Money `json:"discounted_price"`
}

type OrderUser struct {
	ID             string         `json:"_id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	PhoneNumber    string         `json:"phone_number"`
	Email          string         `json:"email"`
	AddressDetails AddressDetails `json:"address_details"`
}

type AddressDetails struct {
	Address1 string `json:"address_1"`
	Address2 string `json:"address_2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Zipcode  string `json:"zipcode"`
}

type NewOrderStatus struct {
	Status string `json:"status" validate:"required,oneof=placed confirmed shipped delivered cancelled"`
}

func (a AddressDetails) String() string {
	parts := []string{a.Address1, a.Address2, a.City, a.State, a.Country, a.Zipcode}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func (o *Order) CustomerName() string {
	if o.User == nil {
		return ""
	}
	return strings.TrimSpace(o.User.FirstName + " " + o.User.LastName)
}

// Cover is the first product image of the ordered color.
func (o *Order) Cover() string {
	if len(o.Color.ProductImages) == 0 {
		return ""
	}
	return o.Color.ProductImages[0]
}

// Revenue sums the prices of orders that were not cancelled.
func Revenue(orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status == OrderStatusCancelled {
			continue
		}
		total = total.Add(o.Price.Decimal)
	}
	return total
}
