package templateform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/utils"
)

var (
	ErrIndexOutOfRange = errors.New("color index out of range")
	ErrInvalidImage    = errors.New("invalid image reference")
)

const defaultHex = "#000000"

// Form is the one template being created or edited in an admin session.
// It is not safe for concurrent use; callers serialize access per session.
type Form struct {
	DraftID       string         `json:"draftId"`
	TemplateID    string         `json:"templateId,omitempty"`
	Type          string         `json:"type" validate:"required"`
	Name          string         `json:"name" validate:"required"`
	Desc          string         `json:"desc" validate:"required"`
	Tags          []string       `json:"tags"`
	Colors        []ColorVariant `json:"colors" validate:"dive"`
	Size          string         `json:"size"`
	TemplateType  string         `json:"templateType"`
	TemplateTheme string         `json:"templateTheme"`
	Orientation   string         `json:"orientation"`
	Count         int            `json:"count" validate:"gte=0"`
	TemplatePhoto bool           `json:"templatePhoto"`
	IsFavorite    bool           `json:"isFavorite"`
	IsPremium     bool           `json:"isPremium"`
}

// ColorVariant pairs a design document with the images rendered from it.
// InitialDetail only changes through SetDesign, together with the image.
type ColorVariant struct {
	Color          string          `json:"color" validate:"required"`
	Hex            string          `json:"hex"`
	TemplateImages []ImageRef      `json:"templateImages"`
	InitialDetail  json.RawMessage `json:"initialDetail,omitempty"`
}

// Fields are the scalar inputs of the form, as posted by the admin UI.
type Fields struct {
	Type          *string `json:"type"`
	Name          *string `json:"name"`
	Desc          *string `json:"desc"`
	Size          *string `json:"size"`
	TemplateType  *string `json:"templateType"`
	TemplateTheme *string `json:"templateTheme"`
	Orientation   *string `json:"orientation"`
	Count         *int    `json:"count"`
	TemplatePhoto *bool   `json:"templatePhoto"`
	IsFavorite    *bool   `json:"isFavorite"`
	IsPremium     *bool   `json:"isPremium"`
}

// New returns the initial empty shape: one blank color, portrait.
func New() *Form {
	return &Form{
		DraftID:     uuid.NewString(),
		Tags:        []string{},
		Colors:      []ColorVariant{newColorVariant()},
		Orientation: "portrait",
	}
}

func newColorVariant() ColorVariant {
	return ColorVariant{Hex: defaultHex, TemplateImages: []ImageRef{}}
}

// Load builds a form for editing an existing template.
func Load(t *models.Template) *Form {
	f := New()
	f.TemplateID = t.ID
	if t.Type != nil {
		f.Type = t.Type.ID
	}
	f.Name = t.Name
	f.Desc = t.Desc
	f.Tags = append([]string{}, t.Tags...)
	f.Size = t.Size
	f.TemplateType = t.TemplateType
	f.TemplateTheme = t.TemplateTheme
	if t.Orientation != "" {
		f.Orientation = t.Orientation
	}
	f.Count = t.Count
	f.TemplatePhoto = t.TemplatePhoto
	f.IsFavorite = t.IsFavorite
	f.IsPremium = t.IsPremium

	f.Colors = make([]ColorVariant, 0, len(t.Colors))
	for _, c := range t.Colors {
		v := ColorVariant{Color: c.Color, Hex: c.Hex, TemplateImages: []ImageRef{}}
		for _, img := range c.TemplateImages {
			if strings.TrimSpace(img) == "" {
				continue
			}
			ref, err := ParseImageRef(img)
			if err != nil {
				// stored by the backend in a form we do not classify; pass it through untouched
				ref = RemoteImage(img)
			}
			v.TemplateImages = append(v.TemplateImages, ref)
		}
		if len(c.InitialDetail) > 0 && string(c.InitialDetail) != "null" {
			v.InitialDetail = append(json.RawMessage(nil), c.InitialDetail...)
		}
		f.Colors = append(f.Colors, v)
	}
	return f
}

// TemplateRef identifies what the form is editing: the template id, or the
// draft id for a template that does not exist yet.
func (f *Form) TemplateRef() string {
	if f.TemplateID != "" {
		return f.TemplateID
	}
	return f.DraftID
}

func (f *Form) Clone() *Form {
	cp := *f
	cp.Tags = append([]string{}, f.Tags...)
	cp.Colors = make([]ColorVariant, len(f.Colors))
	for i, c := range f.Colors {
		cp.Colors[i] = c.clone()
	}
	return &cp
}

func (c ColorVariant) clone() ColorVariant {
	out := c
	out.TemplateImages = append([]ImageRef{}, c.TemplateImages...)
	if c.InitialDetail != nil {
		out.InitialDetail = append(json.RawMessage(nil), c.InitialDetail...)
	}
	return out
}

func (f *Form) SetFields(in Fields) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&f.Type, in.Type)
	set(&f.Name, in.Name)
	set(&f.Desc, in.Desc)
	set(&f.Size, in.Size)
	set(&f.TemplateType, in.TemplateType)
	set(&f.TemplateTheme, in.TemplateTheme)
	set(&f.Orientation, in.Orientation)
	if in.Count != nil {
		f.Count = *in.Count
	}
	if in.TemplatePhoto != nil {
		f.TemplatePhoto = *in.TemplatePhoto
	}
	if in.IsFavorite != nil {
		f.IsFavorite = *in.IsFavorite
	}
	if in.IsPremium != nil {
		f.IsPremium = *in.IsPremium
	}
}

func (f *Form) variant(index int) (*ColorVariant, error) {
	if index < 0 || index >= len(f.Colors) {
		return nil, ErrIndexOutOfRange
	}
	return &f.Colors[index], nil
}

// AddColorVariant appends a blank variant and returns its index.
func (f *Form) AddColorVariant() int {
	f.Colors = append(f.Colors, newColorVariant())
	return len(f.Colors) - 1
}

// RemoveColorVariant drops the variant at index and releases its staged
// previews. Later variants shift down by one.
func (f *Form) RemoveColorVariant(ctx context.Context, index int, previews PreviewStore) error {
	v, err := f.variant(index)
	if err != nil {
		return err
	}
	keys := stagedKeys(v.TemplateImages)
	f.Colors = append(f.Colors[:index:index], f.Colors[index+1:]...)
	release(ctx, previews, keys)
	return nil
}

// SetColorName stores name and fills the hex when the name is in the
// dictionary. A miss leaves the hex alone.
func (f *Form) SetColorName(index int, name string) error {
	v, err := f.variant(index)
	if err != nil {
		return err
	}
	v.Color = name
	if hex, ok := LookupHex(name); ok {
		v.Hex = hex
	}
	return nil
}

// SetColorHex stores hex and fills the name when the hex is in the
// dictionary. A miss leaves the name alone.
func (f *Form) SetColorHex(index int, hex string) error {
	v, err := f.variant(index)
	if err != nil {
		return err
	}
	v.Hex = hex
	if name, ok := LookupColorName(hex); ok {
		v.Color = name
	}
	return nil
}

// AddTag appends the trimmed tag unless it is empty or already present.
func (f *Form) AddTag(text string) bool {
	tag := strings.TrimSpace(text)
	if tag == "" {
		return false
	}
	for _, t := range f.Tags {
		if t == tag {
			return false
		}
	}
	f.Tags = append(f.Tags, tag)
	return true
}

func (f *Form) RemoveTag(text string) bool {
	for i, t := range f.Tags {
		if t == text {
			f.Tags = append(f.Tags[:i:i], f.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// SetDesign replaces the variant's design document and its rendering in one
// step. Staged files the rendering replaces are released.
func (f *Form) SetDesign(ctx context.Context, index int, doc json.RawMessage, image ImageRef, previews PreviewStore) error {
	v, err := f.variant(index)
	if err != nil {
		return err
	}
	if !image.valid() {
		return ErrInvalidImage
	}
	keys := stagedKeys(v.TemplateImages)
	if image.Staged() {
		keys = without(keys, image.Key)
	}
	v.InitialDetail = append(json.RawMessage(nil), doc...)
	v.TemplateImages = []ImageRef{image}
	release(ctx, previews, keys)
	return nil
}

// AttachUpload adds an uploaded image to the variant. The design document
// no longer describes the variant's images afterwards, so it is dropped.
func (f *Form) AttachUpload(index int, image ImageRef) error {
	v, err := f.variant(index)
	if err != nil {
		return err
	}
	if !image.valid() {
		return ErrInvalidImage
	}
	v.TemplateImages = append(v.TemplateImages, image)
	v.InitialDetail = nil
	return nil
}

// RemoveImage drops one image of a variant and releases it if staged. Like
// an upload, it leaves the variant without a design document.
func (f *Form) RemoveImage(ctx context.Context, index, imageIndex int, previews PreviewStore) error {
	v, err := f.variant(index)
	if err != nil {
		return err
	}
	if imageIndex < 0 || imageIndex >= len(v.TemplateImages) {
		return ErrIndexOutOfRange
	}
	removed := v.TemplateImages[imageIndex]
	v.TemplateImages = append(v.TemplateImages[:imageIndex:imageIndex], v.TemplateImages[imageIndex+1:]...)
	v.InitialDetail = nil
	if removed.Staged() {
		release(ctx, previews, []string{removed.Key})
	}
	return nil
}

// StagedKeys lists every preview resource the form holds.
func (f *Form) StagedKeys() []string {
	var keys []string
	for _, c := range f.Colors {
		keys = append(keys, stagedKeys(c.TemplateImages)...)
	}
	return keys
}

// Reset releases all staged previews and returns the form to its initial
// empty shape.
func (f *Form) Reset(ctx context.Context, previews PreviewStore) {
	release(ctx, previews, f.StagedKeys())
	*f = *New()
}

// ValidationError lists invalid fields by their json path, e.g. "colors[1].color".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid template: %s", strings.Join(names, ", "))
}

func (f *Form) Validate() error {
	err := utils.ValidateStruct(f)
	if err == nil {
		for i, c := range f.Colors {
			if strings.TrimSpace(c.Color) == "" {
				return &ValidationError{Fields: map[string]string{fmt.Sprintf("colors[%d].color", i): "required"}}
			}
		}
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, ve := range validationErrors {
		name := ve.Namespace()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		fields[name] = ve.Tag()
	}
	return &ValidationError{Fields: fields}
}

func stagedKeys(images []ImageRef) []string {
	var keys []string
	for _, img := range images {
		if img.Staged() {
			keys = append(keys, img.Key)
		}
	}
	return keys
}

func without(keys []string, key string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

func release(ctx context.Context, previews PreviewStore, keys []string) {
	if previews == nil || len(keys) == 0 {
		return
	}
	if err := previews.Release(ctx, keys...); err != nil {
		config.LogError(config.GetLogger(), "TemplateForm", "release", "previews", keys, err)
	}
}
