package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidProductPrice = errors.New("discounted price must not be negative or exceed the original price")

type Product struct {
	ID           string         `json:"_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     *ProductRef    `json:"category,omitempty"`
	Subcategory  *ProductRef    `json:"subcategory,omitempty"`
	Gender       string         `json:"gender"`
	Price        ProductPrice   `json:"price"`
	ColorOptions []ProductColor `json:"color_options"`
	SizeOptions  []SizeOption   `json:"size_options"`
	OtherInfo    []OtherInfo    `json:"other_info"`
	Instruction  []string       `json:"instruction"`
	Stock        Quantity       `json:"stock"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
}

// ProductRef is a populated taxonomy reference. The backend sends either
// the bare id or an {_id, name} object.
type ProductRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain ProductRef
	return json.Unmarshal(data, (*plain)(r))
}

// ProductPrice is the product level price. The backend stores the original
// price under the misspelled key orignal_price; both spellings are read.
type ProductPrice struct {
	OriginalPrice   Money `json:"orignal_price"`
	DiscountedPrice Money `json:"discounted_price"`
}

func (p *ProductPrice) UnmarshalJSON(data []byte) error {
	var raw struct {
		Misspelled      *Money `json:"orignal_price"`
		Original        *Money `json:"original_price"`
		DiscountedPrice Money  `json:"discounted_price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ProductPrice{DiscountedPrice: raw.DiscountedPrice}
	switch {
	case raw.Misspelled != nil:
		p.OriginalPrice = *raw.Misspelled
	case raw.Original != nil:
		p.OriginalPrice = *raw.Original
	}
	return nil
}

func (p ProductPrice) Validate() error {
	if p.OriginalPrice.IsNegative() || p.DiscountedPrice.IsNegative() {
		return ErrInvalidProductPrice
	}
	if !p.OriginalPrice.IsZero() && p.DiscountedPrice.GreaterThan(p.OriginalPrice.Decimal) {
		return ErrInvalidProductPrice
	}
	return nil
}

type ProductColor struct {
	Color         string       `json:"color"`
	Hex           string       `json:"hex"`
	ProductImages []string     `json:"product_images" validate:"dive,http_url"`
	SizeOptions   []SizeOption `json:"size_options,omitempty" validate:"dive"`
	Price         *OrderPrice  `json:"price,omitempty"`
}

type SizeOption struct {
	Size  string   `json:"size" validate:"required"`
	Stock Quantity `json:"stock" validate:"min=0"`
}

type OtherInfo struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// Quantity is a stock count. The admin form posts it as a string.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*q = Quantity(n)
	return nil
}

// NewProduct is the admin input for creating or updating a product.
type NewProduct struct {
	Title        string         `json:"title" validate:"required"`
	Description  string         `json:"description" validate:"required"`
	Category     string         `json:"category" validate:"required"`
	Subcategory  string         `json:"subcategory"`
	Gender       string         `json:"gender" validate:"omitempty,oneof=male female"`
	Price        ProductPrice   `json:"price"`
	ColorOptions []ProductColor `json:"color_options" validate:"required,min=1,dive"`
	SizeOptions  []SizeOption   `json:"size_options" validate:"dive"`
	OtherInfo    []OtherInfo    `json:"other_info" validate:"dive"`
	Instruction  []string       `json:"instruction"`
	Stock        Quantity       `json:"stock" validate:"min=0"`
}

// Normalize trims the free text and drops blank instructions.
func (p *NewProduct) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
	instructions := make([]string, 0, len(p.Instruction))
	for _, inst := range p.Instruction {
		if inst = strings.TrimSpace(inst); inst != "" {
			instructions = append(instructions, inst)
		}
	}
	p.Instruction = instructions
	for i := range p.ColorOptions {
		p.ColorOptions[i].Color = strings.TrimSpace(p.ColorOptions[i].Color)
		p.ColorOptions[i].Hex = strings.TrimSpace(p.ColorOptions[i].Hex)
	}
}

// Matches is the product list search over the title.
func (p *Product) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q)
}

// InCategory reports whether the product's category carries name. An empty
// name matches every product.
func (p *Product) InCategory(name string) bool {
	if name == "" {
		return true
	}
	return p.Category != nil && p.Category.Name == name
}

// Cover is the first image of the first color option.
func (p *Product) Cover() string {
	if len(p.ColorOptions) == 0 || len(p.ColorOptions[0].ProductImages) == 0 {
		return ""
	}
	return p.ColorOptions[0].ProductImages[0]
}

// ListPrice is the discounted price shown in the product list: the first
// color's price when it has one, else the product price.
func (p *Product) ListPrice() Money {
	if len(p.ColorOptions) > 0 && p.ColorOptions[0].Price != nil {
		return p.ColorOptions[0].Price.DiscountedPrice
	}
	return p.Price.DiscountedPrice
}

// ListStock is the first size of the first color, falling back to the
// product level stock.
func (p *Product) ListStock() Quantity {
	if len(p.ColorOptions) > 0 && len(p.ColorOptions[0].SizeOptions) > 0 {
		return p.ColorOptions[0].SizeOptions[0].Stock
	}
	return p.Stock
}

// FilterProducts applies the title search and the category filter.
func FilterProducts(products []Product, query, category string) []Product {
	out := make([]Product, 0, len(products))
	for i := range products {
		if products[i].Matches(query) && products[i].InCategory(category) {
			out = append(out, products[i])
		}
	}
	return out
}

// ProductRow is the product list line.
type ProductRow struct {
	Product
	CoverImage   string   `json:"cover"`
	DisplayPrice Money    `json:"listPrice"`
	DisplayStock Quantity `json:"listStock"`
}

func NewProductRow(p Product) ProductRow {
	return ProductRow{Product: p, CoverImage: p.Cover(), DisplayPrice: p.ListPrice(), DisplayStock: p.ListStock()}
}
