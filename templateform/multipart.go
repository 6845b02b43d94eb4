package templateform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path"
	"strconv"

	"github.com/google/uuid"

	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/utils"
)

// colorPayload is one entry of the "colors" field. templateImages holds
// remote URLs as-is and the multipart key of every attached file.
type colorPayload struct {
	Color          string          `json:"color"`
	Hex            string          `json:"hex"`
	InitialDetail  json.RawMessage `json:"initialDetail,omitempty"`
	TemplateImages []string        `json:"templateImages"`
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// ImageFieldKey is the multipart field of image j of color i.
func ImageFieldKey(colorIndex, imageIndex int) string {
	return fmt.Sprintf("images-%d-%d", colorIndex, imageIndex)
}

// BuildMultipart encodes the form the way the template endpoints expect.
// Staged files are read back from previews; data URIs are decoded and given
// a generated filename.
func (f *Form) BuildMultipart(ctx context.Context, previews PreviewStore) (string, []byte, error) {
	colors := make([]colorPayload, len(f.Colors))
	var files []filePart

	for i, c := range f.Colors {
		payload := colorPayload{Color: c.Color, Hex: c.Hex, TemplateImages: []string{}}
		if len(c.InitialDetail) > 0 {
			payload.InitialDetail = c.InitialDetail
		}
		for j, img := range c.TemplateImages {
			switch img.Kind {
			case ImageRemote:
				payload.TemplateImages = append(payload.TemplateImages, img.URL)
			case ImageFile:
				if previews == nil {
					return "", nil, fmt.Errorf("color %d image %d: no preview store", i, j)
				}
				data, contentType, err := previews.Open(ctx, img.Key)
				if err != nil {
					return "", nil, fmt.Errorf("color %d image %d: %w", i, j, err)
				}
				if img.ContentType != "" {
					contentType = img.ContentType
				}
				filename := img.Filename
				if filename == "" {
					filename = path.Base(img.Key)
				}
				key := ImageFieldKey(i, j)
				files = append(files, filePart{field: key, filename: filename, contentType: contentType, data: data})
				payload.TemplateImages = append(payload.TemplateImages, key)
			case ImageDataURI:
				data, contentType, err := utils.DecodeDataURI(img.DataURI)
				if err != nil {
					return "", nil, fmt.Errorf("color %d image %d: %w", i, j, err)
				}
				key := ImageFieldKey(i, j)
				filename := fmt.Sprintf("color-%d-%s%s", i, uuid.NewString(), utils.ExtensionForContentType(contentType))
				files = append(files, filePart{field: key, filename: filename, contentType: contentType, data: data})
				payload.TemplateImages = append(payload.TemplateImages, key)
			default:
				return "", nil, fmt.Errorf("color %d image %d: %w", i, j, ErrInvalidImage)
			}
		}
		colors[i] = payload
	}

	tags, err := json.Marshal(f.Tags)
	if err != nil {
		return "", nil, err
	}
	colorsJSON, err := json.Marshal(colors)
	if err != nil {
		return "", nil, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"type", f.Type},
		{"name", f.Name},
		{"desc", f.Desc},
		{"tags", string(tags)},
		{"size", f.Size},
		{"templateType", f.TemplateType},
		{"templateTheme", f.TemplateTheme},
		{"orientation", f.Orientation},
		{"count", strconv.Itoa(f.Count)},
		{"templatePhoto", strconv.FormatBool(f.TemplatePhoto)},
		{"isFavorite", strconv.FormatBool(f.IsFavorite)},
		{"isPremium", strconv.FormatBool(f.IsPremium)},
		{"colors", string(colorsJSON)},
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return "", nil, err
		}
	}
	for _, fp := range files {
		if err := writeFilePart(w, fp); err != nil {
			return "", nil, err
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), body.Bytes(), nil
}

func writeFilePart(w *multipart.Writer, fp filePart) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.field, fp.filename))
	contentType := fp.contentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(fp.data)
	return err
}

// Submitter creates (empty id) or updates a template from a multipart body.
type Submitter interface {
	SubmitTemplate(ctx context.Context, id, contentType string, body []byte) (*models.Template, error)
}

// Submit validates, encodes and sends the form. On success the staged
// previews are released and the form is back to its initial shape. On
// failure the form is untouched and the backend error is returned as-is.
func (f *Form) Submit(ctx context.Context, submitter Submitter, previews PreviewStore) (*models.Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	contentType, body, err := f.BuildMultipart(ctx, previews)
	if err != nil {
		return nil, err
	}
	template, err := submitter.SubmitTemplate(ctx, f.TemplateID, contentType, body)
	if err != nil {
		return nil, err
	}
	f.Reset(ctx, previews)
	return template, nil
}
