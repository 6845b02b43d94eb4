package templateform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/disintegration/imaging"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/utils"
)

// PreviewStore holds locally chosen files between selection and submit.
type PreviewStore interface {
	Stage(ctx context.Context, owner, filename, contentType string, data []byte) (string, error)
	Open(ctx context.Context, key string) ([]byte, string, error)
	Release(ctx context.Context, keys ...string) error
}

func previewKey(owner, filename string) string {
	return "previews/" + owner + "/" + utils.GenerateUniqueFilename(filename)
}

// ThumbnailKey is where the 200px thumbnail of a staged preview lives.
func ThumbnailKey(key string) string {
	dir, file := path.Split(key)
	return dir + "thumbnails/" + strings.TrimSuffix(file, path.Ext(file)) + ".jpg"
}

func makeThumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewPreviewStore picks the store configured by STORAGE_PROVIDER.
func NewPreviewStore(ctx context.Context) (PreviewStore, error) {
	switch utils.GetStorageProvider() {
	case utils.StorageProviderMemory:
		return NewMemoryPreviewStore(), nil
	case utils.StorageProviderGCS:
		client, err := utils.NewGCSClient(ctx)
		if err != nil {
			return nil, err
		}
		bucket, err := utils.GCSBucketName()
		if err != nil {
			return nil, err
		}
		return NewGCSPreviewStore(client, bucket), nil
	}
	return nil, fmt.Errorf("unsupported storage provider %q", utils.GetStorageProvider())
}

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryPreviewStore keeps previews in process memory.
type MemoryPreviewStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
}

func NewMemoryPreviewStore() *MemoryPreviewStore {
	return &MemoryPreviewStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryPreviewStore) Stage(ctx context.Context, owner, filename, contentType string, data []byte) (string, error) {
	key := previewKey(owner, filename)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	if thumb, err := makeThumbnail(data); err == nil {
		m.objects[ThumbnailKey(key)] = memoryObject{data: thumb, contentType: "image/jpeg"}
	}
	return key, nil
}

func (m *MemoryPreviewStore) Open(ctx context.Context, key string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", utils.ErrorRecordNotFound
	}
	return append([]byte(nil), obj.data...), obj.contentType, nil
}

func (m *MemoryPreviewStore) Release(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, key)
		delete(m.objects, ThumbnailKey(key))
	}
	return nil
}

func (m *MemoryPreviewStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *MemoryPreviewStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// GCSPreviewStore stages previews in a bucket next to a thumbnail.
type GCSPreviewStore struct {
	client *storage.Client
	bucket string
}

func NewGCSPreviewStore(client *storage.Client, bucket string) *GCSPreviewStore {
	return &GCSPreviewStore{client: client, bucket: bucket}
}

func (g *GCSPreviewStore) write(ctx context.Context, key, contentType string, data []byte) error {
	wc := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

func (g *GCSPreviewStore) Stage(ctx context.Context, owner, filename, contentType string, data []byte) (string, error) {
	key := previewKey(owner, filename)
	if err := g.write(ctx, key, contentType, data); err != nil {
		return "", err
	}
	thumb, err := makeThumbnail(data)
	if err != nil {
		// not every upload is a decodable raster image (svg, pdf)
		return key, nil
	}
	if err := g.write(ctx, ThumbnailKey(key), "image/jpeg", thumb); err != nil {
		config.LogError(config.GetLogger(), "Preview", "Stage", "thumbnail", key, err)
	}
	return key, nil
}

func (g *GCSPreviewStore) Open(ctx context.Context, key string) ([]byte, string, error) {
	obj := g.client.Bucket(g.bucket).Object(key)
	rc, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", utils.ErrorRecordNotFound
		}
		return nil, "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", err
	}
	return data, rc.Attrs.ContentType, nil
}

func (g *GCSPreviewStore) Release(ctx context.Context, keys ...string) error {
	var firstErr error
	for _, key := range keys {
		for _, k := range []string{key, ThumbnailKey(key)} {
			err := g.client.Bucket(g.bucket).Object(k).Delete(ctx)
			if err != nil && !errors.Is(err, storage.ErrObjectNotExist) && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
