package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/weddingcard/card_admin/models"
)

// BlogImage is a newly uploaded blog image.
type BlogImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EncodeBlog writes the blog form: title, blogCategory, desc, extraData as
// JSON, one "existingImages" field per kept URL and one "images" part per
// new file.
func EncodeBlog(input models.NewBlog, images []BlogImage) (string, []byte, error) {
	extra, err := json.Marshal(input.ExtraData)
	if err != nil {
		return "", nil, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"title", input.Title},
		{"blogCategory", input.BlogCategory},
		{"desc", input.Desc},
		{"extraData", string(extra)},
	}
	for _, url := range input.ExistingImages {
		fields = append(fields, [2]string{"existingImages", url})
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return "", nil, err
		}
	}

	for _, img := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, img.Filename))
		contentType := img.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return "", nil, err
		}
		if _, err := part.Write(img.Data); err != nil {
			return "", nil, err
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), body.Bytes(), nil
}

// SaveBlog creates (empty id) or updates a blog post.
func (c *Client) SaveBlog(ctx context.Context, id string, input models.NewBlog, images []BlogImage) (*models.Blog, error) {
	contentType, body, err := EncodeBlog(input, images)
	if err != nil {
		return nil, err
	}
	return c.SubmitBlog(ctx, id, contentType, body)
}
