package templateform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/models"
)

type parsedPart struct {
	filename    string
	contentType string
	data        []byte
}

func parseMultipart(t *testing.T, contentType string, body []byte) (map[string]string, map[string]parsedPart) {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("unexpected content type %q: %v", contentType, err)
	}
	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := map[string]string{}
	files := map[string]parsedPart{}
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		data, _ := io.ReadAll(p)
		if p.FileName() != "" {
			if _, dup := files[p.FormName()]; dup {
				t.Fatalf("duplicate file field %s", p.FormName())
			}
			files[p.FormName()] = parsedPart{filename: p.FileName(), contentType: p.Header.Get("Content-Type"), data: data}
		} else {
			fields[p.FormName()] = string(data)
		}
	}
	return fields, files
}

func readyForm() *Form {
	f := New()
	name, desc, typ := "Royal", "Gold foil invite", "t1"
	f.SetFields(Fields{Name: &name, Desc: &desc, Type: &typ})
	f.AddTag("gold")
	f.SetColorName(0, "red")
	return f
}

func TestMultipartCarriesUploadAndEditorImage(t *testing.T) {
	ctx := context.Background()
	previews := NewMemoryPreviewStore()
	f := readyForm()
	f.AddColorVariant()
	f.SetColorName(1, "gold")

	upload := []byte("uploaded-file-bytes")
	key, err := previews.Stage(ctx, "session", "front.jpg", "image/jpeg", upload)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	f.AttachUpload(0, FileImage(key, "front.jpg", "image/jpeg"))

	doc := json.RawMessage(`{"width":1080,"pages":[]}`)
	f.SetDesign(ctx, 1, doc, DataURIImage("data:image/png;base64,"+pixelPNG), previews)

	contentType, body, err := f.BuildMultipart(ctx, previews)
	if err != nil {
		t.Fatalf("BuildMultipart: %v", err)
	}
	fields, files := parseMultipart(t, contentType, body)

	if len(files) != 2 {
		t.Fatalf("expected 2 file parts, got %d", len(files))
	}
	first, ok := files["images-0-0"]
	if !ok || !bytes.Equal(first.data, upload) || first.filename != "front.jpg" || first.contentType != "image/jpeg" {
		t.Fatalf("upload part wrong: %+v", first)
	}
	second, ok := files["images-1-0"]
	png, _ := base64.StdEncoding.DecodeString(pixelPNG)
	if !ok || !bytes.Equal(second.data, png) || second.contentType != "image/png" {
		t.Fatalf("editor part wrong: %+v", second)
	}
	if !strings.HasPrefix(second.filename, "color-1-") || !strings.HasSuffix(second.filename, ".png") {
		t.Fatalf("unexpected synthesized filename %q", second.filename)
	}

	for _, name := range []string{"type", "name", "desc", "size", "templateType", "templateTheme", "orientation", "count", "templatePhoto", "isFavorite", "isPremium"} {
		if _, ok := fields[name]; !ok {
			t.Fatalf("missing field %s", name)
		}
	}
	if fields["tags"] != `["gold"]` {
		t.Fatalf("unexpected tags %s", fields["tags"])
	}

	var colors []colorPayload
	if err := json.Unmarshal([]byte(fields["colors"]), &colors); err != nil {
		t.Fatalf("colors json: %v", err)
	}
	if colors[0].TemplateImages[0] != "images-0-0" || colors[1].TemplateImages[0] != "images-1-0" {
		t.Fatalf("colors do not reference their parts: %+v", colors)
	}
	if string(colors[1].InitialDetail) != string(doc) || colors[0].InitialDetail != nil {
		t.Fatalf("unexpected initialDetail: %+v", colors)
	}
}

func TestMultipartForwardsRemoteURLs(t *testing.T) {
	f := readyForm()
	f.AttachUpload(0, RemoteImage("https://cdn.example.com/a.png"))
	contentType, body, err := f.BuildMultipart(context.Background(), nil)
	if err != nil {
		t.Fatalf("BuildMultipart: %v", err)
	}
	fields, files := parseMultipart(t, contentType, body)
	if len(files) != 0 {
		t.Fatalf("remote images must not become file parts")
	}
	if !strings.Contains(fields["colors"], "https://cdn.example.com/a.png") {
		t.Fatalf("remote url missing from colors: %s", fields["colors"])
	}
}

type fakeSubmitter struct {
	id          string
	contentType string
	body        []byte
	err         error
}

func (s *fakeSubmitter) SubmitTemplate(ctx context.Context, id, contentType string, body []byte) (*models.Template, error) {
	s.id, s.contentType, s.body = id, contentType, body
	if s.err != nil {
		return nil, s.err
	}
	return &models.Template{ID: "tpl-new"}, nil
}

func TestSubmitSuccessResets(t *testing.T) {
	ctx := context.Background()
	previews := NewMemoryPreviewStore()
	f := readyForm()
	key, _ := previews.Stage(ctx, "session", "a.png", "image/png", []byte("a"))
	f.AttachUpload(0, FileImage(key, "a.png", "image/png"))
	draft := f.DraftID

	sub := &fakeSubmitter{}
	tpl, err := f.Submit(ctx, sub, previews)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if tpl.ID != "tpl-new" || sub.id != "" {
		t.Fatalf("expected a create, got id %q", sub.id)
	}
	if previews.Has(key) {
		t.Fatalf("staged preview not released after submit")
	}
	if f.Name != "" || len(f.Tags) != 0 || len(f.Colors) != 1 || f.DraftID == draft {
		t.Fatalf("form not reset: %+v", f)
	}
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	ctx := context.Background()
	previews := NewMemoryPreviewStore()
	f := readyForm()
	f.TemplateID = "tpl1"
	key, _ := previews.Stage(ctx, "session", "a.png", "image/png", []byte("a"))
	f.AttachUpload(0, FileImage(key, "a.png", "image/png"))
	before := f.Clone()

	sub := &fakeSubmitter{err: &backend.APIError{Status: http.StatusConflict, Message: "Template name already exists"}}
	_, err := f.Submit(ctx, sub, previews)
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Template name already exists" {
		t.Fatalf("expected verbatim backend error, got %v", err)
	}
	if sub.id != "tpl1" {
		t.Fatalf("expected an update of tpl1, got %q", sub.id)
	}
	a, _ := json.Marshal(before)
	b, _ := json.Marshal(f)
	if !bytes.Equal(a, b) {
		t.Fatalf("form changed after failed submit")
	}
	if !previews.Has(key) {
		t.Fatalf("preview released after failed submit")
	}
}

func TestSubmitValidatesBeforeSending(t *testing.T) {
	f := New()
	sub := &fakeSubmitter{}
	_, err := f.Submit(context.Background(), sub, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if sub.body != nil {
		t.Fatalf("nothing should be sent for an invalid form")
	}
}
