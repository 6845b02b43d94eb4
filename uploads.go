package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/weddingcard/card_admin/editorhandoff"
	"github.com/weddingcard/card_admin/templateform"
	"github.com/weddingcard/card_admin/utils"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var (
	errFileTooLarge     = errors.New("file size exceeds 5MB limit")
	errUnsupportedImage = errors.New("unsupported image type")
)

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type uploadedFile struct {
	filename    string
	contentType string
	data        []byte
}

// readImageUpload reads one multipart image within the size limit. The
// content type is sniffed, not taken from the browser.
func readImageUpload(fh *multipart.FileHeader) (uploadedFile, error) {
	if fh.Size > maxUploadSizeBytes {
		return uploadedFile{}, errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return uploadedFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSizeBytes+1))
	if err != nil {
		return uploadedFile{}, err
	}
	if int64(len(data)) > maxUploadSizeBytes {
		return uploadedFile{}, errFileTooLarge
	}
	contentType := http.DetectContentType(data)
	if !imageMimeTypes[contentType] {
		return uploadedFile{}, errUnsupportedImage
	}
	return uploadedFile{filename: fh.Filename, contentType: contentType, data: data}, nil
}

// uploadImageHandler attaches an image to color :index. A multipart "file"
// is staged as a preview; a JSON {"url": ...} is attached as-is (remote URL
// or data URI).
func (s *server) uploadImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := s.logger
		requestID := requestIDFromHeaders(c)
		ctx := c.Request.Context()

		index, ok := pathIndex(c, "index")
		if !ok {
			return
		}

		var image templateform.ImageRef
		if fh, err := c.FormFile("file"); err == nil {
			upload, err := readImageUpload(fh)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			key, err := s.previews.Stage(ctx, sessionID(c), upload.filename, upload.contentType, upload.data)
			if err != nil {
				logUploadError(logger, err, utils.GetStorageProvider(), requestID)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage upload"})
				return
			}
			image = templateform.FileImage(key, upload.filename, upload.contentType)
		} else {
			var input struct {
				URL string `json:"url"`
			}
			if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.URL) == "" {
				badRequest(c, "file or url is required")
				return
			}
			ref, err := templateform.ParseImageRef(input.URL)
			if err != nil || ref.Kind == templateform.ImageFile {
				// staged keys are only issued by this handler
				badRequest(c, templateform.ErrInvalidImage.Error())
				return
			}
			image = ref
		}

		st, err := s.handoff.Update(ctx, sessionID(c), func(st *editorhandoff.State) error {
			if st.FormData == nil {
				st.FormData = templateform.New()
			}
			return st.FormData.AttachUpload(index, image)
		})
		if err != nil {
			if image.Staged() {
				if releaseErr := s.previews.Release(ctx, image.Key); releaseErr != nil {
					logUploadError(logger, releaseErr, utils.GetStorageProvider(), requestID)
				}
			}
			s.fail(c, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"color_index": index,
			"kind":        image.Kind,
			"object_key":  image.Key,
		}).Info("[upload.stage]")
		c.JSON(http.StatusCreated, newFormView(st))
	}
}

// previewHandler serves a staged preview or its thumbnail.
func (s *server) previewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		objectKey := strings.TrimPrefix(c.Param("key"), "/")
		if !utils.IsPreviewKey(objectKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
			return
		}
		data, contentType, err := s.previews.Open(c.Request.Context(), objectKey)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
				return
			}
			logUploadError(s.logger, err, utils.GetStorageProvider(), requestIDFromHeaders(c))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
			return
		}
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		c.Header("Cache-Control", "private, max-age=300")
		c.Data(http.StatusOK, contentType, data)
	}
}

func logUploadError(logger *logrus.Logger, err error, provider string, requestID string) {
	logger.WithFields(logrus.Fields{
		"error":      err.Error(),
		"provider":   provider,
		"request_id": requestID,
	}).Error("[upload.error]")
}

func requestIDFromHeaders(c *gin.Context) string {
	if id, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok && id != "" {
		return id
	}
	if id := strings.TrimSpace(c.GetHeader("X-Request-Id")); id != "" {
		return id
	}
	return fmt.Sprintf("upload-%d", time.Now().UnixNano())
}
