package templateform

import (
	"strings"

	"github.com/weddingcard/card_admin/utils"
)

type ImageKind string

const (
	// ImageRemote is an image the backend already stores; its URL is forwarded as-is.
	ImageRemote ImageKind = "remote"
	// ImageFile is a locally chosen file staged in the preview store.
	ImageFile ImageKind = "file"
	// ImageDataURI is an editor export that has not been uploaded yet.
	ImageDataURI ImageKind = "data-uri"
)

type ImageRef struct {
	Kind        ImageKind `json:"kind"`
	URL         string    `json:"url,omitempty"`
	Key         string    `json:"key,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	DataURI     string    `json:"dataUri,omitempty"`
}

func RemoteImage(url string) ImageRef {
	return ImageRef{Kind: ImageRemote, URL: strings.TrimSpace(url)}
}

func FileImage(key, filename, contentType string) ImageRef {
	return ImageRef{Kind: ImageFile, Key: key, Filename: filename, ContentType: contentType}
}

func DataURIImage(uri string) ImageRef {
	return ImageRef{Kind: ImageDataURI, DataURI: strings.TrimSpace(uri)}
}

// ParseImageRef classifies an image reference coming back from the editor
// or the browser.
func ParseImageRef(ref string) (ImageRef, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case utils.IsDataURI(ref):
		return DataURIImage(ref), nil
	case utils.IsRemoteURL(ref):
		return RemoteImage(ref), nil
	case utils.IsPreviewKey(ref):
		return FileImage(ref, "", ""), nil
	}
	return ImageRef{}, ErrInvalidImage
}

// Staged reports whether the image holds a preview store resource.
func (r ImageRef) Staged() bool {
	return r.Kind == ImageFile && r.Key != ""
}

// Display is what the admin UI renders for the image.
func (r ImageRef) Display() string {
	switch r.Kind {
	case ImageRemote:
		return r.URL
	case ImageFile:
		return utils.BuildObjectAccessURL(r.Key)
	case ImageDataURI:
		return r.DataURI
	}
	return ""
}

func (r ImageRef) valid() bool {
	switch r.Kind {
	case ImageRemote:
		return r.URL != ""
	case ImageFile:
		return r.Key != ""
	case ImageDataURI:
		return utils.IsDataURI(r.DataURI)
	}
	return false
}
