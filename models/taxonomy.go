package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// The backend returns references either populated (an object) or as a bare
// id string, depending on the endpoint. Every reference type below accepts both.

type ParentCategory struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type Category struct {
	ID             string          `json:"_id"`
	Name           string          `json:"name"`
	ParentCategory *ParentCategory `json:"parentCategory,omitempty"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

type Subcategory struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Category  *Category  `json:"category,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type Type struct {
	ID          string       `json:"_id"`
	Name        string       `json:"name"`
	SubCategory *Subcategory `json:"subCategory,omitempty"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
}

// IsBareRef reports whether the reference carries only an id.
func (p *ParentCategory) IsBareRef() bool { return p != nil && p.Name == "" }
func (c *Category) IsBareRef() bool       { return c != nil && c.Name == "" && c.ParentCategory == nil }
func (s *Subcategory) IsBareRef() bool    { return s != nil && s.Name == "" && s.Category == nil }

func (p *ParentCategory) UnmarshalJSON(data []byte) error {
	if id, ok := bareID(data); ok {
		*p = ParentCategory{ID: id}
		return nil
	}
	type alias ParentCategory
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ParentCategory(v)
	return nil
}

func (c *Category) UnmarshalJSON(data []byte) error {
	if id, ok := bareID(data); ok {
		*c = Category{ID: id}
		return nil
	}
	type alias Category
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Category(v)
	return nil
}

func (s *Subcategory) UnmarshalJSON(data []byte) error {
	if id, ok := bareID(data); ok {
		*s = Subcategory{ID: id}
		return nil
	}
	type alias Subcategory
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Subcategory(v)
	return nil
}

func (t *Type) UnmarshalJSON(data []byte) error {
	if id, ok := bareID(data); ok {
		*t = Type{ID: id}
		return nil
	}
	type alias Type
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Type(v)
	return nil
}

func bareID(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return "", false
	}
	return id, true
}

// CategoryTreeRecord is one row of the denormalized tree returned by
// GET /api/category/all. Subcategories are listed per category by display
// name, with ids in a parallel list when the backend provides them.
type CategoryTreeRecord struct {
	ParentCategoryID string     `json:"parentCategoryId"`
	Category         []string   `json:"category"`
	Subcategory      [][]string `json:"subcategory"`
	SubcategoryID    [][]string `json:"subcategoryId"`
}

type NewTaxonomyName struct {
	Name string `json:"name" validate:"required"`
}
