package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/taxonomy"
)

type taxonomyInput struct {
	Name             string `json:"name"`
	ParentCategoryID string `json:"parentCategoryId"`
	CategoryID       string `json:"categoryId"`
	SubCategoryID    string `json:"subCategoryId"`
	SubCategoryName  string `json:"subCategoryName"`
}

func (s *server) taxonomyService(c *gin.Context) *taxonomy.Service {
	return taxonomy.NewService(s.client(c))
}

func bindTaxonomyInput(c *gin.Context) (taxonomyInput, bool) {
	var input taxonomyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request")
		return input, false
	}
	return input, true
}

// taxonomyHandler returns the four lists with every reference hydrated.
func (s *server) taxonomyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		store, err := taxonomy.Load(c.Request.Context(), s.client(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"parentCategories": store.ParentCategories,
			"categories":       store.HydratedCategories(),
			"subcategories":    store.HydratedSubcategories(),
			"types":            store.HydratedTypes(),
		})
	}
}

func (s *server) taxonomyTreeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tree, err := taxonomy.LoadTree(c.Request.Context(), s.client(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": tree})
	}
}

// resolveHandler answers ?level=<level>&id=<id>, or ?name=<subcategory name>
// for the name lookup over the denormalized tree.
func (s *server) resolveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		level := strings.ToLower(strings.TrimSpace(c.Query("level")))
		id := strings.TrimSpace(c.Query("id"))

		var (
			path taxonomy.Path
			err  error
		)
		if name := strings.TrimSpace(c.Query("name")); name != "" {
			tree, loadErr := taxonomy.LoadTree(ctx, s.client(c))
			if loadErr != nil {
				s.fail(c, loadErr)
				return
			}
			path, err = tree.ResolveSubcategoryName(name, id)
		} else {
			if id == "" {
				badRequest(c, "id is required")
				return
			}
			store, loadErr := taxonomy.Load(ctx, s.client(c))
			if loadErr != nil {
				s.fail(c, loadErr)
				return
			}
			switch level {
			case "parent-category":
				path, err = store.ResolveParentCategoryID(id)
			case "category":
				path, err = store.ResolveCategoryID(id)
			case "subcategory", "sub-category":
				path, err = store.ResolveSubcategoryID(id)
			case "type":
				path, err = store.ResolveTypeID(id)
			default:
				badRequest(c, "level must be parent-category, category, subcategory or type")
				return
			}
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"path": path, "ids": path.IDs(), "url": leafURL(path)})
	}
}

func leafURL(p taxonomy.Path) string {
	switch p.Leaf() {
	case taxonomy.LevelType:
		return p.TypeURL()
	case taxonomy.LevelSubcategory:
		return p.SubcategoryURL()
	case taxonomy.LevelCategory:
		return p.CategoryURL()
	}
	return p.ParentCategoryURL()
}

// parent categories

func (s *server) createParentCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindTaxonomyInput(c)
		if !ok {
			return
		}
		result, err := s.taxonomyService(c).CreateParentCategory(c.Request.Context(), input.Name)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionCreate, ReferenceType: "ParentCategory", ReferenceID: result.ID, After: result})
		c.JSON(http.StatusCreated, gin.H{"data": result})
	}
}

func (s *server) updateParentCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindTaxonomyInput(c)
		if !ok {
			return
		}
		result, err := s.taxonomyService(c).UpdateParentCategory(c.Request.Context(), c.Param("id"), input.Name)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionUpdate, ReferenceType: "ParentCategory", ReferenceID: c.Param("id"), After: result})
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func (s *server) deleteParentCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.taxonomyService(c).DeleteParentCategory(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionDelete, ReferenceType: "ParentCategory", ReferenceID: c.Param("id")})
		c.Status(http.StatusNoContent)
	}
}

// categories

func (s *server) createCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindTaxonomyInput(c)
		if !ok {
			return
		}
		result, err := s.taxonomyService(c).CreateCategory(c.Request.Context(), input.ParentCategoryID, input.Name)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionCreate, ReferenceType: "Category", ReferenceID: result.ID, After: result})
		c.JSON(http.StatusCreated, gin.H{"data": result})
	}
}

func (s *server) updateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindTaxonomyInput(c)
		if !ok {
			return
		}
		result, err := s.taxonomyService(c).UpdateCategory(c.Request.Context(), c.Param("id"), input.ParentCategoryID, input.Name)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionUpdate, ReferenceType: "Category", ReferenceID: c.Param("id"), After: result})
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func (s *server) deleteCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.taxonomyService(c).DeleteCategory(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionDelete, ReferenceType: "Category", ReferenceID: c.Param("id")})
		c.Status(http.StatusNoContent)
	}
}

// subcategories

func (s *server) createSubcategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindTaxonomyInput(c)
		if !ok {
			return
		}
		result, err := s.taxonomyService(c).CreateSubcategory(c.Request.Context(), input.CategoryID, input.Name)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionCreate, ReferenceType: "Subcategory", ReferenceID: result.ID, After: result})
		c.JSON(http.StatusCreated, gin.H{"data": result})
	}
}

func (s *server) updateSubcategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindTaxonomyInput(c)
		if !ok {
			return
		}
		result, err := s.taxonomyService(c).UpdateSubcategory(c.Request.Context(), c.Param("id"), input.CategoryID, input.Name)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionUpdate, ReferenceType: "Subcategory", ReferenceID: c.Param("id"), After: result})
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func (s *server) deleteSubcategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.taxonomyService(c).DeleteSubcategory(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionDelete, ReferenceType: "Subcategory", ReferenceID: c.Param("id")})
		c.Status(http.StatusNoContent)
	}
}

// types

func (s *server) createTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindTaxonomyInput(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		svc := s.taxonomyService(c)

		var (
			result *models.Type
			err    error
		)
		if input.SubCategoryName != "" {
			tree, loadErr := taxonomy.LoadTree(ctx, s.client(c))
			if loadErr != nil {
				s.fail(c, loadErr)
				return
			}
			result, err = svc.CreateTypeByName(ctx, tree, input.SubCategoryName, input.SubCategoryID, input.Name)
		} else {
			result, err = svc.CreateType(ctx, input.SubCategoryID, input.Name)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionCreate, ReferenceType: "Type", ReferenceID: result.ID, After: result})
		c.JSON(http.StatusCreated, gin.H{"data": result})
	}
}

func (s *server) updateTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindTaxonomyInput(c)
		if !ok {
			return
		}
		result, err := s.taxonomyService(c).UpdateType(c.Request.Context(), c.Param("id"), input.SubCategoryID, input.Name)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionUpdate, ReferenceType: "Type", ReferenceID: c.Param("id"), After: result})
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func (s *server) deleteTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.taxonomyService(c).DeleteType(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionDelete, ReferenceType: "Type", ReferenceID: c.Param("id")})
		c.Status(http.StatusNoContent)
	}
}
