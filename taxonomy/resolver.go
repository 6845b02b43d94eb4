package taxonomy

import (
	"github.com/weddingcard/card_admin/models"
)

// ResolveCategory walks the embedded parent reference of a hydrated category.
func ResolveCategory(c *models.Category) (Path, error) {
	if c == nil || c.ID == "" {
		return Path{}, &ResolutionError{Level: LevelCategory, Entity: LevelCategory}
	}
	if c.ParentCategory == nil || c.ParentCategory.ID == "" {
		return Path{}, &ResolutionError{Level: LevelParentCategory, Entity: LevelCategory, ID: c.ID}
	}
	return Path{ParentCategoryID: c.ParentCategory.ID, CategoryID: c.ID}, nil
}

// ResolveSubcategory walks subcategory -> category -> parent category.
func ResolveSubcategory(sub *models.Subcategory) (Path, error) {
	if sub == nil || sub.ID == "" {
		return Path{}, &ResolutionError{Level: LevelSubcategory, Entity: LevelSubcategory}
	}
	if sub.Category == nil || sub.Category.ID == "" {
		return Path{}, &ResolutionError{Level: LevelCategory, Entity: LevelSubcategory, ID: sub.ID}
	}
	if sub.Category.ParentCategory == nil || sub.Category.ParentCategory.ID == "" {
		return Path{}, &ResolutionError{Level: LevelParentCategory, Entity: LevelSubcategory, ID: sub.ID}
	}
	return Path{
		ParentCategoryID: sub.Category.ParentCategory.ID,
		CategoryID:       sub.Category.ID,
		SubCategoryID:    sub.ID,
	}, nil
}

// ResolveType walks type -> subcategory -> category -> parent category.
func ResolveType(t *models.Type) (Path, error) {
	if t == nil || t.ID == "" {
		return Path{}, &ResolutionError{Level: LevelType, Entity: LevelType}
	}
	if t.SubCategory == nil || t.SubCategory.ID == "" {
		return Path{}, &ResolutionError{Level: LevelSubcategory, Entity: LevelType, ID: t.ID}
	}
	path, err := ResolveSubcategory(t.SubCategory)
	if err != nil {
		re, ok := err.(*ResolutionError)
		if !ok {
			return Path{}, err
		}
		return Path{}, &ResolutionError{Level: re.Level, Entity: LevelType, ID: t.ID, Ref: re.Ref}
	}
	path.TypeID = t.ID
	return path, nil
}

// The Store variants resolve a bare id against the loaded lists. A
// reference that arrived as a bare id is re-hydrated from the list of the
// level above; a reference to a record the lists no longer contain is a
// dangling link and fails like a missing one.

func (s *Store) ResolveParentCategoryID(id string) (Path, error) {
	if _, ok := s.ParentCategory(id); !ok {
		return Path{}, &ResolutionError{Level: LevelParentCategory, Entity: LevelParentCategory, ID: id, Ref: id}
	}
	return Path{ParentCategoryID: id}, nil
}

func (s *Store) ResolveCategoryID(id string) (Path, error) {
	c, ok := s.Category(id)
	if !ok {
		return Path{}, &ResolutionError{Level: LevelCategory, Entity: LevelCategory, ID: id, Ref: id}
	}
	return s.resolveCategoryRef(c, LevelCategory, id)
}

func (s *Store) ResolveSubcategoryID(id string) (Path, error) {
	sub, ok := s.Subcategory(id)
	if !ok {
		return Path{}, &ResolutionError{Level: LevelSubcategory, Entity: LevelSubcategory, ID: id, Ref: id}
	}
	path, err := s.resolveCategoryRef(sub.Category, LevelSubcategory, id)
	if err != nil {
		return Path{}, err
	}
	path.SubCategoryID = sub.ID
	return path, nil
}

func (s *Store) ResolveTypeID(id string) (Path, error) {
	t, ok := s.Type(id)
	if !ok {
		return Path{}, &ResolutionError{Level: LevelType, Entity: LevelType, ID: id, Ref: id}
	}
	if t.SubCategory == nil || t.SubCategory.ID == "" {
		return Path{}, &ResolutionError{Level: LevelSubcategory, Entity: LevelType, ID: id}
	}
	sub, ok := s.Subcategory(t.SubCategory.ID)
	if !ok {
		return Path{}, &ResolutionError{Level: LevelSubcategory, Entity: LevelType, ID: id, Ref: t.SubCategory.ID}
	}
	categoryRef := sub.Category
	if categoryRef == nil || categoryRef.ID == "" {
		categoryRef = t.SubCategory.Category
	}
	path, err := s.resolveCategoryRef(categoryRef, LevelType, id)
	if err != nil {
		return Path{}, err
	}
	path.SubCategoryID = sub.ID
	path.TypeID = t.ID
	return path, nil
}

func (s *Store) resolveCategoryRef(ref *models.Category, entity Level, id string) (Path, error) {
	if ref == nil || ref.ID == "" {
		return Path{}, &ResolutionError{Level: LevelCategory, Entity: entity, ID: id}
	}
	category, ok := s.Category(ref.ID)
	if !ok {
		return Path{}, &ResolutionError{Level: LevelCategory, Entity: entity, ID: id, Ref: ref.ID}
	}
	parent := category.ParentCategory
	if parent == nil || parent.ID == "" {
		parent = ref.ParentCategory
	}
	if parent == nil || parent.ID == "" {
		return Path{}, &ResolutionError{Level: LevelParentCategory, Entity: entity, ID: id}
	}
	if _, ok := s.ParentCategory(parent.ID); !ok {
		return Path{}, &ResolutionError{Level: LevelParentCategory, Entity: entity, ID: id, Ref: parent.ID}
	}
	return Path{ParentCategoryID: parent.ID, CategoryID: category.ID}, nil
}
