package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/weddingcard/card_admin/models"
)

const (
	PathLogin               = "/api/auth/login"
	PathAllParentCategories = "/api/all/parent-category"
	PathAllCategories       = "/api/all/category"
	PathAllSubcategories    = "/api/all/sub-category"
	PathAllTypes            = "/api/all/type"
	PathCategoryTree        = "/api/category/all"
	PathTemplates           = "/api/template"
	PathBlogs               = "/api/blog"
	PathProducts            = "/api/product"
	PathInquiries           = "/api/inquiry"
	PathUsers               = "/api/user"
	PathOrders              = "/api/order"
	PathConfig              = "/api/config"
)

func itemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

func (c *Client) Login(ctx context.Context, input models.LoginInput) (*models.LoginInfo, error) {
	var info models.LoginInfo
	if err := c.PostJSON(ctx, PathLogin, input, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// taxonomy lists

func (c *Client) ListParentCategories(ctx context.Context) ([]models.ParentCategory, error) {
	var results []models.ParentCategory
	err := c.GetJSON(ctx, PathAllParentCategories, &results)
	return results, err
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var results []models.Category
	err := c.GetJSON(ctx, PathAllCategories, &results)
	return results, err
}

func (c *Client) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	var results []models.Subcategory
	err := c.GetJSON(ctx, PathAllSubcategories, &results)
	return results, err
}

func (c *Client) ListTypes(ctx context.Context) ([]models.Type, error) {
	var results []models.Type
	err := c.GetJSON(ctx, PathAllTypes, &results)
	return results, err
}

func (c *Client) CategoryTree(ctx context.Context) ([]models.CategoryTreeRecord, error) {
	var results []models.CategoryTreeRecord
	err := c.GetJSON(ctx, PathCategoryTree, &results)
	return results, err
}

// templates

func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var results []models.Template
	err := c.GetJSON(ctx, PathTemplates, &results)
	return results, err
}

func (c *Client) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	var result models.Template
	if err := c.GetJSON(ctx, itemPath(PathTemplates, id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitTemplate creates (empty id) or updates a template from a multipart body.
func (c *Client) SubmitTemplate(ctx context.Context, id, contentType string, body []byte) (*models.Template, error) {
	method, path := http.MethodPost, PathTemplates
	if id != "" {
		method, path = http.MethodPut, itemPath(PathTemplates, id)
	}
	var result models.Template
	if err := c.SendMultipart(ctx, method, path, contentType, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.Delete(ctx, itemPath(PathTemplates, id))
}

// blogs

func (c *Client) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	var results []models.Blog
	err := c.GetJSON(ctx, PathBlogs, &results)
	return results, err
}

func (c *Client) SubmitBlog(ctx context.Context, id, contentType string, body []byte) (*models.Blog, error) {
	method, path := http.MethodPost, PathBlogs
	if id != "" {
		method, path = http.MethodPut, itemPath(PathBlogs, id)
	}
	var result models.Blog
	if err := c.SendMultipart(ctx, method, path, contentType, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	return c.Delete(ctx, itemPath(PathBlogs, id))
}

// products

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var results []models.Product
	err := c.GetJSON(ctx, PathProducts, &results)
	return results, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var result models.Product
	if err := c.GetJSON(ctx, itemPath(PathProducts, id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveProduct creates (empty id) or updates a product.
func (c *Client) SaveProduct(ctx context.Context, id string, input models.NewProduct) (*models.Product, error) {
	var result models.Product
	var err error
	if id == "" {
		err = c.PostJSON(ctx, PathProducts, input, &result)
	} else {
		err = c.PutJSON(ctx, itemPath(PathProducts, id), input, &result)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.Delete(ctx, itemPath(PathProducts, id))
}

// inquiries, users, orders

func (c *Client) ListInquiries(ctx context.Context) ([]models.Inquiry, error) {
	var results []models.Inquiry
	err := c.GetJSON(ctx, PathInquiries, &results)
	return results, err
}

func (c *Client) DeleteInquiry(ctx context.Context, id string) error {
	return c.Delete(ctx, itemPath(PathInquiries, id))
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var results []models.User
	err := c.GetJSON(ctx, PathUsers, &results)
	return results, err
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var results []models.Order
	err := c.GetJSON(ctx, PathOrders, &results)
	return results, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	return c.PutJSON(ctx, itemPath(PathOrders, id), map[string]string{"status": string(status)}, nil)
}

// site config

func (c *Client) GetSiteConfig(ctx context.Context) (*models.SiteConfig, error) {
	var result models.SiteConfig
	if err := c.GetJSON(ctx, PathConfig, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateSiteConfigTypes(ctx context.Context, id string, types []string) error {
	return c.PutJSON(ctx, itemPath(PathConfig, id), map[string][]string{"types": types}, nil)
}
