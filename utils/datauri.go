package utils

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

func IsDataURI(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), "data:")
}

// DecodeDataURI decodes "data:<mime>[;base64],<payload>". A missing mime
// type defaults to text/plain as browsers do.
func DecodeDataURI(ref string) ([]byte, string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "data:") {
		return nil, "", ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}

	isBase64 := false
	contentType := "text/plain"
	for i, part := range strings.Split(header, ";") {
		switch {
		case i == 0 && part != "":
			contentType = strings.ToLower(part)
		case part == "base64":
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some encoders drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, "", ErrInvalidDataURI
			}
		}
		return data, contentType, nil
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", ErrInvalidDataURI
	}
	return []byte(unescaped), contentType, nil
}

// ExtensionForContentType picks the file extension used for synthesized
// upload filenames.
func ExtensionForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}
