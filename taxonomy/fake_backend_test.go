package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/models"
)

// fakeBackend mimics the REST backend's nested taxonomy routes in memory.
type fakeBackend struct {
	parents       []models.ParentCategory
	categories    []models.Category
	subcategories []models.Subcategory
	types         []models.Type

	nextID int
	calls  []string
}

func (f *fakeBackend) mutations() []string {
	var out []string
	for _, c := range f.calls {
		if !strings.HasPrefix(c, http.MethodGet) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) ListParentCategories(ctx context.Context) ([]models.ParentCategory, error) {
	f.calls = append(f.calls, "GET /api/all/parent-category")
	return append([]models.ParentCategory(nil), f.parents...), nil
}

func (f *fakeBackend) ListCategories(ctx context.Context) ([]models.Category, error) {
	f.calls = append(f.calls, "GET /api/all/category")
	return append([]models.Category(nil), f.categories...), nil
}

func (f *fakeBackend) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	f.calls = append(f.calls, "GET /api/all/sub-category")
	return append([]models.Subcategory(nil), f.subcategories...), nil
}

func (f *fakeBackend) ListTypes(ctx context.Context) ([]models.Type, error) {
	f.calls = append(f.calls, "GET /api/all/type")
	return append([]models.Type(nil), f.types...), nil
}

// segments turns /api/parent-category/p/category/c/... into {"parent-category": "p", ...}
// and reports the trailing collection name when the path ends in one.
func segments(path string) (map[string]string, string) {
	parts := strings.Split(strings.TrimPrefix(path, "/api/"), "/")
	ids := make(map[string]string)
	for i := 0; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			ids[parts[i]] = parts[i+1]
		} else {
			return ids, parts[i]
		}
	}
	return ids, ""
}

func (f *fakeBackend) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeBackend) PostJSON(ctx context.Context, path string, in interface{}, out interface{}) error {
	f.calls = append(f.calls, "POST "+path)
	name := in.(models.NewTaxonomyName).Name
	ids, collection := segments(path)

	var created interface{}
	switch collection {
	case "parent-category":
		p := models.ParentCategory{ID: f.newID("p"), Name: name}
		f.parents = append(f.parents, p)
		created = p
	case "category":
		c := models.Category{ID: f.newID("c"), Name: name, ParentCategory: &models.ParentCategory{ID: ids["parent-category"]}}
		f.categories = append(f.categories, c)
		created = c
	case "sub-category":
		s := models.Subcategory{ID: f.newID("s"), Name: name, Category: &models.Category{ID: ids["category"]}}
		f.subcategories = append(f.subcategories, s)
		created = s
	case "type":
		t := models.Type{ID: f.newID("t"), Name: name, SubCategory: &models.Subcategory{ID: ids["sub-category"]}}
		f.types = append(f.types, t)
		created = t
	default:
		return &backend.APIError{Status: http.StatusNotFound, Message: "Route not found"}
	}
	return roundTrip(created, out)
}

func (f *fakeBackend) PutJSON(ctx context.Context, path string, in interface{}, out interface{}) error {
	f.calls = append(f.calls, "PUT "+path)
	return nil
}

func (f *fakeBackend) Delete(ctx context.Context, path string) error {
	f.calls = append(f.calls, "DELETE "+path)
	ids, _ := segments(path)
	switch {
	case ids["type"] != "":
		f.types = removeByID(f.types, ids["type"], func(t models.Type) string { return t.ID })
	case ids["sub-category"] != "":
		for _, t := range f.types {
			if t.SubCategory != nil && t.SubCategory.ID == ids["sub-category"] {
				return &backend.APIError{Status: http.StatusBadRequest, Message: "Cannot delete sub category with existing types"}
			}
		}
		f.subcategories = removeByID(f.subcategories, ids["sub-category"], func(s models.Subcategory) string { return s.ID })
	case ids["category"] != "":
		for _, s := range f.subcategories {
			if s.Category != nil && s.Category.ID == ids["category"] {
				return &backend.APIError{Status: http.StatusBadRequest, Message: "Cannot delete category with existing sub categories"}
			}
		}
		f.categories = removeByID(f.categories, ids["category"], func(c models.Category) string { return c.ID })
	case ids["parent-category"] != "":
		f.parents = removeByID(f.parents, ids["parent-category"], func(p models.ParentCategory) string { return p.ID })
	}
	return nil
}

func removeByID[T any](list []T, id string, idOf func(T) string) []T {
	out := list[:0:0]
	for _, item := range list {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

func roundTrip(in interface{}, out interface{}) error {
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
