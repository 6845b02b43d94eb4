package taxonomy

import (
	"context"
	"errors"
	"strings"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/utils"
)

var ErrNotConfirmed = errors.New("delete must be confirmed")

// Backend is the part of the REST client the CRUD service needs.
type Backend interface {
	Source
	PostJSON(ctx context.Context, path string, in interface{}, out interface{}) error
	PutJSON(ctx context.Context, path string, in interface{}, out interface{}) error
	Delete(ctx context.Context, path string) error
}

// Service runs the taxonomy screens' mutations. Every call below the root
// resolves the full chain from a freshly loaded store first; nothing is sent
// when that fails.
type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

func (s *Service) Store(ctx context.Context) (*Store, error) {
	return Load(ctx, s.backend)
}

func validateName(name string) (string, error) {
	input := models.NewTaxonomyName{Name: strings.TrimSpace(name)}
	if err := utils.ValidateStruct(input); err != nil {
		return "", err
	}
	return input.Name, nil
}

// parent categories

func (s *Service) CreateParentCategory(ctx context.Context, name string) (*models.ParentCategory, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	var result models.ParentCategory
	if err := s.backend.PostJSON(ctx, ParentCategoryCollectionURL, models.NewTaxonomyName{Name: name}, &result); err != nil {
		return nil, s.logFailure("CreateParentCategory", name, err)
	}
	return &result, nil
}

func (s *Service) UpdateParentCategory(ctx context.Context, id, name string) (*models.ParentCategory, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	path, err := store.ResolveParentCategoryID(id)
	if err != nil {
		return nil, err
	}
	var result models.ParentCategory
	if err := s.backend.PutJSON(ctx, path.ParentCategoryURL(), models.NewTaxonomyName{Name: name}, &result); err != nil {
		return nil, s.logFailure("UpdateParentCategory", id, err)
	}
	return &result, nil
}

func (s *Service) DeleteParentCategory(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	store, err := s.Store(ctx)
	if err != nil {
		return err
	}
	path, err := store.ResolveParentCategoryID(id)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, path.ParentCategoryURL()); err != nil {
		return s.logFailure("DeleteParentCategory", id, err)
	}
	return nil
}

// categories

func (s *Service) CreateCategory(ctx context.Context, parentID, name string) (*models.Category, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	path, err := store.ResolveParentCategoryID(parentID)
	if err != nil {
		return nil, err
	}
	var result models.Category
	if err := s.backend.PostJSON(ctx, path.CategoryCollectionURL(), models.NewTaxonomyName{Name: name}, &result); err != nil {
		return nil, s.logFailure("CreateCategory", path, err)
	}
	return &result, nil
}

// UpdateCategory renames a category. A non-empty parentID addresses the
// update under that parent category instead of the current one.
func (s *Service) UpdateCategory(ctx context.Context, id, parentID, name string) (*models.Category, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	path, err := store.ResolveCategoryID(id)
	if err != nil {
		return nil, err
	}
	if parentID != "" && parentID != path.ParentCategoryID {
		if _, err := store.ResolveParentCategoryID(parentID); err != nil {
			return nil, err
		}
		path.ParentCategoryID = parentID
	}
	var result models.Category
	if err := s.backend.PutJSON(ctx, path.CategoryURL(), models.NewTaxonomyName{Name: name}, &result); err != nil {
		return nil, s.logFailure("UpdateCategory", path, err)
	}
	return &result, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	store, err := s.Store(ctx)
	if err != nil {
		return err
	}
	path, err := store.ResolveCategoryID(id)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, path.CategoryURL()); err != nil {
		return s.logFailure("DeleteCategory", path, err)
	}
	return nil
}

// subcategories

func (s *Service) CreateSubcategory(ctx context.Context, categoryID, name string) (*models.Subcategory, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	path, err := store.ResolveCategoryID(categoryID)
	if err != nil {
		return nil, err
	}
	var result models.Subcategory
	if err := s.backend.PostJSON(ctx, path.SubcategoryCollectionURL(), models.NewTaxonomyName{Name: name}, &result); err != nil {
		return nil, s.logFailure("CreateSubcategory", path, err)
	}
	return &result, nil
}

// UpdateSubcategory renames a subcategory, optionally addressing it under
// another category.
func (s *Service) UpdateSubcategory(ctx context.Context, id, categoryID, name string) (*models.Subcategory, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	path, err := store.ResolveSubcategoryID(id)
	if err != nil {
		return nil, err
	}
	if categoryID != "" && categoryID != path.CategoryID {
		target, err := store.ResolveCategoryID(categoryID)
		if err != nil {
			return nil, err
		}
		path.ParentCategoryID, path.CategoryID = target.ParentCategoryID, target.CategoryID
	}
	var result models.Subcategory
	if err := s.backend.PutJSON(ctx, path.SubcategoryURL(), models.NewTaxonomyName{Name: name}, &result); err != nil {
		return nil, s.logFailure("UpdateSubcategory", path, err)
	}
	return &result, nil
}

func (s *Service) DeleteSubcategory(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	store, err := s.Store(ctx)
	if err != nil {
		return err
	}
	path, err := store.ResolveSubcategoryID(id)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, path.SubcategoryURL()); err != nil {
		return s.logFailure("DeleteSubcategory", path, err)
	}
	return nil
}

// types

func (s *Service) CreateType(ctx context.Context, subcategoryID, name string) (*models.Type, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	path, err := store.ResolveSubcategoryID(subcategoryID)
	if err != nil {
		return nil, err
	}
	return s.createType(ctx, path, name)
}

// CreateTypeByName creates a type under a subcategory picked by display
// name from the denormalized tree.
func (s *Service) CreateTypeByName(ctx context.Context, tree Tree, subcategoryName, subcategoryID, name string) (*models.Type, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	path, err := tree.ResolveSubcategoryName(subcategoryName, subcategoryID)
	if err != nil {
		return nil, err
	}
	return s.createType(ctx, path, name)
}

func (s *Service) createType(ctx context.Context, path Path, name string) (*models.Type, error) {
	var result models.Type
	if err := s.backend.PostJSON(ctx, path.TypeCollectionURL(), models.NewTaxonomyName{Name: name}, &result); err != nil {
		return nil, s.logFailure("CreateType", path, err)
	}
	return &result, nil
}

// UpdateType renames a type, optionally addressing it under another subcategory.
func (s *Service) UpdateType(ctx context.Context, id, subcategoryID, name string) (*models.Type, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	path, err := store.ResolveTypeID(id)
	if err != nil {
		return nil, err
	}
	if subcategoryID != "" && subcategoryID != path.SubCategoryID {
		target, err := store.ResolveSubcategoryID(subcategoryID)
		if err != nil {
			return nil, err
		}
		target.TypeID = path.TypeID
		path = target
	}
	var result models.Type
	if err := s.backend.PutJSON(ctx, path.TypeURL(), models.NewTaxonomyName{Name: name}, &result); err != nil {
		return nil, s.logFailure("UpdateType", path, err)
	}
	return &result, nil
}

func (s *Service) DeleteType(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	store, err := s.Store(ctx)
	if err != nil {
		return err
	}
	path, err := store.ResolveTypeID(id)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, path.TypeURL()); err != nil {
		return s.logFailure("DeleteType", path, err)
	}
	return nil
}

func (s *Service) logFailure(funcName string, data any, err error) error {
	config.LogError(config.GetLogger(), "Taxonomy", funcName, "backend", data, err)
	return err
}
