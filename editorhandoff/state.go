package editorhandoff

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/weddingcard/card_admin/templateform"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseEditing   Phase = "editing"
	PhaseReturning Phase = "returning"
)

var (
	ErrStaleToken   = errors.New("edit token is no longer valid")
	ErrWrongPhase   = errors.New("no edit in the required state")
	ErrNoDesign     = errors.New("editor returned no design")
	ErrSessionBusy  = errors.New("another change to this session is in progress")
	ErrNoFormLoaded = errors.New("no template form loaded")
)

// EditToken pins one editor round trip to a color index of one template.
type EditToken struct {
	Index       int    `json:"index"`
	TemplateRef string `json:"templateRef"`
	Nonce       string `json:"nonce"`
}

// Editor is the design editor as seen from the form: it can show a design,
// hand back the current one, and render it flat.
type Editor interface {
	LoadDesign(ctx context.Context, doc json.RawMessage) error
	SerializeDesign(ctx context.Context) (json.RawMessage, error)
	RenderToImage(ctx context.Context) (string, error)
}

// State is one admin session's template form and the single design bundle
// travelling between the form and the editor.
type State struct {
	Phase             Phase                  `json:"phase"`
	EditorData        json.RawMessage        `json:"editorData,omitempty"`
	TemplateImage     *templateform.ImageRef `json:"templateImage,omitempty"`
	CurrentColorIndex int                    `json:"currentColorIndex"`
	Token             *EditToken             `json:"token,omitempty"`
	FormData          *templateform.Form     `json:"formData"`
}

func NewState() *State {
	return &State{Phase: PhaseIdle, FormData: templateform.New()}
}

// Begin starts an edit of color index. Whatever bundle is left over from an
// earlier round trip is overwritten, never merged.
func (s *State) Begin(index int) (EditToken, error) {
	if s.FormData == nil {
		return EditToken{}, ErrNoFormLoaded
	}
	if index < 0 || index >= len(s.FormData.Colors) {
		return EditToken{}, templateform.ErrIndexOutOfRange
	}
	variant := s.FormData.Colors[index]

	s.clearBundle()
	if len(variant.InitialDetail) > 0 {
		s.EditorData = append(json.RawMessage(nil), variant.InitialDetail...)
	}
	if len(variant.TemplateImages) > 0 {
		img := variant.TemplateImages[0]
		s.TemplateImage = &img
	}
	token := EditToken{Index: index, TemplateRef: s.FormData.TemplateRef(), Nonce: uuid.NewString()}
	s.CurrentColorIndex = index
	s.Token = &token
	s.Phase = PhaseEditing
	return token, nil
}

// Enter loads the pinned design into the editor, if the variant has one.
func (s *State) Enter(ctx context.Context, token EditToken, editor Editor) error {
	if s.Phase != PhaseEditing {
		return ErrWrongPhase
	}
	if err := s.check(token); err != nil {
		return err
	}
	if len(s.EditorData) == 0 {
		return nil
	}
	return editor.LoadDesign(ctx, s.EditorData)
}

// Save takes the editor's current design and rendering for the pinned index.
func (s *State) Save(ctx context.Context, token EditToken, editor Editor) error {
	if s.Phase != PhaseEditing {
		return ErrWrongPhase
	}
	if err := s.check(token); err != nil {
		return err
	}
	doc, err := editor.SerializeDesign(ctx)
	if err != nil {
		return err
	}
	if len(doc) == 0 || !json.Valid(doc) {
		return ErrNoDesign
	}
	rendered, err := editor.RenderToImage(ctx)
	if err != nil {
		return err
	}
	image, err := templateform.ParseImageRef(rendered)
	if err != nil {
		return err
	}
	// staged keys belong to whichever session uploaded them
	if image.Kind == templateform.ImageFile {
		return templateform.ErrInvalidImage
	}
	s.EditorData = append(json.RawMessage(nil), doc...)
	s.TemplateImage = &image
	s.Phase = PhaseReturning
	return nil
}

// Consume writes the saved bundle into colors[k] of the form and clears it.
// Nothing else in the form changes.
func (s *State) Consume(ctx context.Context, previews templateform.PreviewStore) error {
	if s.Phase != PhaseReturning || s.Token == nil || s.TemplateImage == nil {
		return ErrWrongPhase
	}
	if err := s.check(*s.Token); err != nil {
		s.reset()
		return err
	}
	if err := s.FormData.SetDesign(ctx, s.Token.Index, s.EditorData, *s.TemplateImage, previews); err != nil {
		return err
	}
	s.reset()
	return nil
}

// Cancel abandons the edit. The form is not touched.
func (s *State) Cancel() {
	s.reset()
}

// RemoveColor removes a color variant from the form. An outstanding edit of
// that index or a later one no longer points at the same variant and is
// dropped.
func (s *State) RemoveColor(ctx context.Context, index int, previews templateform.PreviewStore) error {
	if s.FormData == nil {
		return ErrNoFormLoaded
	}
	if err := s.FormData.RemoveColorVariant(ctx, index, previews); err != nil {
		return err
	}
	if s.Token != nil && s.Token.Index >= index {
		s.reset()
	}
	return nil
}

// ReplaceForm switches the session to another template. Any edit in flight
// belonged to the old form and is dropped; its staged previews are released.
func (s *State) ReplaceForm(ctx context.Context, form *templateform.Form, previews templateform.PreviewStore) {
	if s.FormData != nil && s.FormData != form {
		s.FormData.Reset(ctx, previews)
	}
	s.FormData = form
	s.reset()
}

func (s *State) check(token EditToken) error {
	if s.Token == nil || *s.Token != token {
		return ErrStaleToken
	}
	if s.FormData == nil || s.FormData.TemplateRef() != token.TemplateRef {
		return ErrStaleToken
	}
	if token.Index < 0 || token.Index >= len(s.FormData.Colors) {
		return ErrStaleToken
	}
	return nil
}

func (s *State) clearBundle() {
	s.EditorData = nil
	s.TemplateImage = nil
}

func (s *State) reset() {
	s.clearBundle()
	s.Token = nil
	s.CurrentColorIndex = 0
	s.Phase = PhaseIdle
}
