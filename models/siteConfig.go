package models

import (
	"errors"
	"strings"
)

var (
	ErrEmptyConfigType      = errors.New("type is required")
	ErrConfigTypeOutOfRange = errors.New("type index out of range")
)

// SiteConfig is the single storefront configuration document.
type SiteConfig struct {
	ID    string   `json:"_id"`
	Types []string `json:"types"`
}

// WithType returns the type list with name appended. The stored config is
// not modified until the backend accepts the new list.
func (c *SiteConfig) WithType(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyConfigType
	}
	out := make([]string, 0, len(c.Types)+1)
	out = append(out, c.Types...)
	return append(out, name), nil
}

// WithoutType returns the type list without the entry at index.
func (c *SiteConfig) WithoutType(index int) ([]string, error) {
	if index < 0 || index >= len(c.Types) {
		return nil, ErrConfigTypeOutOfRange
	}
	out := make([]string, 0, len(c.Types)-1)
	out = append(out, c.Types[:index]...)
	return append(out, c.Types[index+1:]...), nil
}
