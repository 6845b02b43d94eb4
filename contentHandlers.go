package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/taxonomy"
	"github.com/weddingcard/card_admin/utils"
)

// blogs

func (s *server) listBlogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		blogs, err := s.client(c).ListBlogs(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		query := c.Query("q")
		filtered := make([]models.Blog, 0, len(blogs))
		for i := range blogs {
			if blogs[i].Matches(query) {
				filtered = append(filtered, blogs[i])
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": filtered})
	}
}

// saveBlogHandler creates a post (POST) or updates :id (PUT) from the
// admin's multipart form.
func (s *server) saveBlogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBlog
		if err := c.ShouldBind(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}
		if raw := strings.TrimSpace(c.PostForm("extraData")); raw != "" {
			if err := json.Unmarshal([]byte(raw), &input.ExtraData); err != nil {
				badRequest(c, "extraData must be a JSON object")
				return
			}
		}
		if err := utils.ValidateStruct(input); err != nil {
			s.fail(c, err)
			return
		}

		var images []backend.BlogImage
		if form, err := c.MultipartForm(); err == nil && form != nil {
			for _, fh := range form.File["images"] {
				upload, err := readImageUpload(fh)
				if err != nil {
					badRequest(c, err.Error())
					return
				}
				images = append(images, backend.BlogImage{Filename: upload.filename, ContentType: upload.contentType, Data: upload.data})
			}
		}

		id := c.Param("id")
		blog, err := s.client(c).SaveBlog(c.Request.Context(), id, input, images)
		if err != nil {
			s.fail(c, err)
			return
		}
		action, status := models.ActionCreate, http.StatusCreated
		if id != "" {
			action, status = models.ActionUpdate, http.StatusOK
		}
		s.record(c, models.NewActivity{ActionType: action, ReferenceType: "Blog", ReferenceID: blog.ID, After: blog})
		c.JSON(status, gin.H{"data": blog})
	}
}

func (s *server) deleteBlogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !confirmed(c) {
			s.fail(c, taxonomy.ErrNotConfirmed)
			return
		}
		if err := s.client(c).DeleteBlog(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionDelete, ReferenceType: "Blog", ReferenceID: c.Param("id")})
		c.Status(http.StatusNoContent)
	}
}

// inquiries

func (s *server) listInquiriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		inquiries, err := s.client(c).ListInquiries(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": inquiries})
	}
}

// deleteInquiryHandler deletes upstream first and only then returns the
// list without the removed inquiry.
func (s *server) deleteInquiryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !confirmed(c) {
			s.fail(c, taxonomy.ErrNotConfirmed)
			return
		}
		ctx := c.Request.Context()
		id := c.Param("id")
		client := s.client(c)
		if err := client.DeleteInquiry(ctx, id); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionDelete, ReferenceType: "Inquiry", ReferenceID: id})

		inquiries, err := client.ListInquiries(ctx)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": models.RemoveInquiry(inquiries, id)})
	}
}

// users

func (s *server) listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.client(c).ListUsers(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		users = models.FilterUsers(users, c.Query("q"))
		for i := range users {
			users[i].Contact = users[i].FormattedContact()
		}
		c.JSON(http.StatusOK, gin.H{"data": users})
	}
}

// orders

func (s *server) listOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.client(c).ListOrders(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		if raw := c.Query("status"); raw != "" {
			status, err := models.ParseOrderStatus(raw)
			if err != nil {
				s.fail(c, err)
				return
			}
			filtered := make([]models.Order, 0, len(orders))
			for _, o := range orders {
				if o.Status == status {
					filtered = append(filtered, o)
				}
			}
			orders = filtered
		}
		c.JSON(http.StatusOK, gin.H{
			"data":    orders,
			"revenue": models.NewMoney(models.Revenue(orders)),
		})
	}
}

func (s *server) updateOrderStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewOrderStatus
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}
		input.Status = strings.ToLower(strings.TrimSpace(input.Status))
		if err := utils.ValidateStruct(input); err != nil {
			s.fail(c, err)
			return
		}
		status, err := models.ParseOrderStatus(input.Status)
		if err != nil {
			s.fail(c, err)
			return
		}

		id := c.Param("id")
		if err := s.client(c).UpdateOrderStatus(c.Request.Context(), id, status); err != nil {
			s.fail(c, err)
			return
		}
		s.record(c, models.NewActivity{ActionType: models.ActionUpdate, ReferenceType: "Order", ReferenceID: id, After: input})
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"_id": id, "status": status}})
	}
}

// site config

func (s *server) getConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := s.client(c).GetSiteConfig(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": cfg})
	}
}

func (s *server) addConfigTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Type string `json:"type"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}
		s.changeConfigTypes(c, func(cfg *models.SiteConfig) ([]string, error) {
			return cfg.WithType(input.Type)
		})
	}
}

func (s *server) removeConfigTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := pathIndex(c, "index")
		if !ok {
			return
		}
		s.changeConfigTypes(c, func(cfg *models.SiteConfig) ([]string, error) {
			return cfg.WithoutType(index)
		})
	}
}

// changeConfigTypes reads the config, computes the new type list and sends
// it. The reply is the config as the backend now holds it.
func (s *server) changeConfigTypes(c *gin.Context, change func(*models.SiteConfig) ([]string, error)) {
	ctx := c.Request.Context()
	client := s.client(c)
	cfg, err := client.GetSiteConfig(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	types, err := change(cfg)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := client.UpdateSiteConfigTypes(ctx, cfg.ID, types); err != nil {
		s.fail(c, err)
		return
	}
	s.record(c, models.NewActivity{ActionType: models.ActionUpdate, ReferenceType: "SiteConfig", ReferenceID: cfg.ID, Before: cfg.Types, After: types})

	updated, err := client.GetSiteConfig(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// activity

func (s *server) activityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		entries, err := s.activity.Latest(c.Request.Context(), limit)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries})
	}
}
