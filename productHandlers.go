package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/taxonomy"
	"github.com/weddingcard/card_admin/templateform"
	"github.com/weddingcard/card_admin/utils"
)

func (s *server) listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := s.client(c).ListProducts(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		filtered := models.FilterProducts(products, c.Query("q"), c.Query("category"))
		rows := make([]models.ProductRow, len(filtered))
		for i := range filtered {
			rows[i] = models.NewProductRow(filtered[i])
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

func (s *server) getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := s.client(c).GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": product})
	}
}

// saveProductHandler creates a product (POST) or updates :id (PUT).
func (s *server) saveProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}
		input.Normalize()
		fillProductColors(input.ColorOptions)
		if err := utils.ValidateStruct(input); err != nil {
			s.fail(c, err)
			return
		}
		if err := input.Price.Validate(); err != nil {
			s.fail(c, err)
			return
		}

		id := c.Param("id")
		product, err := s.client(c).SaveProduct(c.Request.Context(), id, input)
		if err != nil {
			s.fail(c, err)
			return
		}
		action, status := models.ActionCreate, http.StatusCreated
		if id != "" {
			action, status = models.ActionUpdate, http.StatusOK
		}
		s.record(c, models.NewActivity{ActionType: action, ReferenceType: "Product", ReferenceID: product.ID, After: product})
		c.JSON(status, gin.H{"data": product})
	}
}

func (s *server) deleteProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !confirmed(c) {
			s.fail(c, taxonomy.ErrNotConfirmed)
			return
		}
		if err := s.client(c).DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionDelete, ReferenceType: "Product", ReferenceID: c.Param("id")})
		c.Status(http.StatusNoContent)
	}
}

// fillProductColors completes a color option from the color dictionary when
// only one of name and hex was given.
func fillProductColors(colors []models.ProductColor) {
	for i := range colors {
		opt := &colors[i]
		switch {
		case opt.Hex == "" && opt.Color != "":
			if hex, ok := templateform.LookupHex(opt.Color); ok {
				opt.Hex = hex
			}
		case opt.Color == "" && opt.Hex != "":
			if name, ok := templateform.LookupColorName(opt.Hex); ok {
				opt.Color = name
			}
		}
	}
}
