package taxonomy

import (
	"context"
	"strings"

	"github.com/weddingcard/card_admin/models"
)

// Source is the list API the store is loaded from.
type Source interface {
	ListParentCategories(ctx context.Context) ([]models.ParentCategory, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListSubcategories(ctx context.Context) ([]models.Subcategory, error)
	ListTypes(ctx context.Context) ([]models.Type, error)
}

// Store is a per-request snapshot of the four taxonomy lists. It is never
// persisted; every screen loads a fresh one.
type Store struct {
	ParentCategories []models.ParentCategory
	Categories       []models.Category
	Subcategories    []models.Subcategory
	Types            []models.Type

	parentByID      map[string]int
	categoryByID    map[string]int
	subcategoryByID map[string]int
	typeByID        map[string]int
}

// Load fetches the lists one after another.
func Load(ctx context.Context, src Source) (*Store, error) {
	parents, err := src.ListParentCategories(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := src.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	subcategories, err := src.ListSubcategories(ctx)
	if err != nil {
		return nil, err
	}
	types, err := src.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(parents, categories, subcategories, types), nil
}

func NewStore(parents []models.ParentCategory, categories []models.Category, subcategories []models.Subcategory, types []models.Type) *Store {
	s := &Store{
		ParentCategories: parents,
		Categories:       categories,
		Subcategories:    subcategories,
		Types:            types,
		parentByID:       make(map[string]int, len(parents)),
		categoryByID:     make(map[string]int, len(categories)),
		subcategoryByID:  make(map[string]int, len(subcategories)),
		typeByID:         make(map[string]int, len(types)),
	}
	for i := range parents {
		s.parentByID[parents[i].ID] = i
	}
	for i := range categories {
		s.categoryByID[categories[i].ID] = i
	}
	for i := range subcategories {
		s.subcategoryByID[subcategories[i].ID] = i
	}
	for i := range types {
		s.typeByID[types[i].ID] = i
	}
	return s
}

func (s *Store) ParentCategory(id string) (*models.ParentCategory, bool) {
	i, ok := s.parentByID[id]
	if !ok || id == "" {
		return nil, false
	}
	return &s.ParentCategories[i], true
}

func (s *Store) Category(id string) (*models.Category, bool) {
	i, ok := s.categoryByID[id]
	if !ok || id == "" {
		return nil, false
	}
	return &s.Categories[i], true
}

func (s *Store) Subcategory(id string) (*models.Subcategory, bool) {
	i, ok := s.subcategoryByID[id]
	if !ok || id == "" {
		return nil, false
	}
	return &s.Subcategories[i], true
}

func (s *Store) Type(id string) (*models.Type, bool) {
	i, ok := s.typeByID[id]
	if !ok || id == "" {
		return nil, false
	}
	return &s.Types[i], true
}

// FindChild returns the id of the entity at level named name (case
// insensitive) whose chain resolves under parentID. Parent categories have
// no parent; parentID is ignored for them.
func (s *Store) FindChild(level Level, parentID, name string) (string, bool) {
	name = strings.TrimSpace(name)
	switch level {
	case LevelParentCategory:
		for _, p := range s.ParentCategories {
			if strings.EqualFold(p.Name, name) {
				return p.ID, true
			}
		}
	case LevelCategory:
		for _, c := range s.Categories {
			if !strings.EqualFold(c.Name, name) {
				continue
			}
			if path, err := s.ResolveCategoryID(c.ID); err == nil && path.ParentCategoryID == parentID {
				return c.ID, true
			}
		}
	case LevelSubcategory:
		for _, sub := range s.Subcategories {
			if !strings.EqualFold(sub.Name, name) {
				continue
			}
			if path, err := s.ResolveSubcategoryID(sub.ID); err == nil && path.CategoryID == parentID {
				return sub.ID, true
			}
		}
	case LevelType:
		for _, t := range s.Types {
			if !strings.EqualFold(t.Name, name) {
				continue
			}
			if path, err := s.ResolveTypeID(t.ID); err == nil && path.SubCategoryID == parentID {
				return t.ID, true
			}
		}
	}
	return "", false
}

// HydrateCategory returns a copy whose parent reference carries the name
// from the store when the list returned a bare id.
func (s *Store) HydrateCategory(c models.Category) models.Category {
	if c.ParentCategory.IsBareRef() {
		if p, ok := s.ParentCategory(c.ParentCategory.ID); ok {
			parent := *p
			c.ParentCategory = &parent
		}
	}
	return c
}

func (s *Store) HydrateSubcategory(sub models.Subcategory) models.Subcategory {
	if sub.Category == nil {
		return sub
	}
	category := *sub.Category
	if sub.Category.IsBareRef() {
		if c, ok := s.Category(sub.Category.ID); ok {
			category = *c
		}
	}
	category = s.HydrateCategory(category)
	sub.Category = &category
	return sub
}

func (s *Store) HydrateType(t models.Type) models.Type {
	if t.SubCategory == nil {
		return t
	}
	sub := *t.SubCategory
	if t.SubCategory.IsBareRef() {
		if found, ok := s.Subcategory(t.SubCategory.ID); ok {
			sub = *found
		}
	}
	sub = s.HydrateSubcategory(sub)
	t.SubCategory = &sub
	return t
}

func (s *Store) HydratedCategories() []models.Category {
	out := make([]models.Category, len(s.Categories))
	for i := range s.Categories {
		out[i] = s.HydrateCategory(s.Categories[i])
	}
	return out
}

func (s *Store) HydratedSubcategories() []models.Subcategory {
	out := make([]models.Subcategory, len(s.Subcategories))
	for i := range s.Subcategories {
		out[i] = s.HydrateSubcategory(s.Subcategories[i])
	}
	return out
}

func (s *Store) HydratedTypes() []models.Type {
	out := make([]models.Type, len(s.Types))
	for i := range s.Types {
		out[i] = s.HydrateType(s.Types[i])
	}
	return out
}
