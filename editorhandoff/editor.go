package editorhandoff

import (
	"context"
	"encoding/json"
)

// PostedDesign is the editor as reached over HTTP: the browser runs the
// canvas and posts back the serialized document and its flat rendering.
type PostedDesign struct {
	Document json.RawMessage `json:"document"`
	Image    string          `json:"image"`

	loaded json.RawMessage
}

func (p *PostedDesign) LoadDesign(ctx context.Context, doc json.RawMessage) error {
	p.loaded = append(json.RawMessage(nil), doc...)
	return nil
}

func (p *PostedDesign) SerializeDesign(ctx context.Context) (json.RawMessage, error) {
	return p.Document, nil
}

func (p *PostedDesign) RenderToImage(ctx context.Context) (string, error) {
	return p.Image, nil
}

// Loaded is the design handed to the editor on entry, nil for a blank canvas.
func (p *PostedDesign) Loaded() json.RawMessage {
	return p.loaded
}
