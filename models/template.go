package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type Template struct {
	ID            string          `json:"_id"`
	Type          *Type           `json:"type,omitempty"`
	Name          string          `json:"name"`
	Desc          string          `json:"desc"`
	Tags          []string        `json:"tags"`
	Colors        []TemplateColor `json:"colors"`
	Size          string          `json:"size"`
	TemplateType  string          `json:"templateType"`
	TemplateTheme string          `json:"templateTheme"`
	Orientation   string          `json:"orientation"`
	Count         int             `json:"count"`
	TemplatePhoto bool            `json:"templatePhoto"`
	IsFavorite    bool            `json:"isFavorite"`
	IsPremium     bool            `json:"isPremium"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

type TemplateColor struct {
	Color          string          `json:"color"`
	Hex            string          `json:"hex"`
	TemplateImages ImageList       `json:"templateImages"`
	InitialDetail  json.RawMessage `json:"initialDetail,omitempty"`
}

// ImageList decodes either a single image reference or a list of them.
type ImageList []string

func (l *ImageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = ImageList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// Cover is the image shown on the template list.
func (t *Template) Cover() string {
	if len(t.Colors) == 0 || len(t.Colors[0].TemplateImages) == 0 {
		return ""
	}
	return t.Colors[0].TemplateImages[0]
}
