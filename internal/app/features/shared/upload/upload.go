// Package upload parses image attachments out of multipart requests,
// enforcing the platform's count, size, and type limits before anything
// touches object storage.
package upload

import (
	"fmt"
	"net/http"

	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/imagestore"
)

// maxMemory bounds the in-memory portion of multipart parsing; larger parts
// spill to temp files.
const maxMemory = 8 << 20

// Images extracts the files under the given form field. Returns
// apperr.Validation on any limit violation. An absent field yields an empty
// slice. Callers must consume the readers before the request body closes.
func Images(r *http.Request, field string) ([]imagestore.File, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, apperr.Validation("invalid multipart form: %v", err)
	}
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	if len(headers) > imagestore.MaxImagesPerUpload {
		return nil, apperr.Validation("at most %d images per upload", imagestore.MaxImagesPerUpload)
	}

	files := make([]imagestore.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > imagestore.MaxImageSize {
			return nil, apperr.Validation("image %q exceeds the %dMB size limit",
				fh.Filename, imagestore.MaxImageSize/(1<<20))
		}
		contentType := fh.Header.Get("Content-Type")
		if !imagestore.ValidType(contentType) {
			return nil, apperr.Validation("image %q has unsupported type %q", fh.Filename, contentType)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open uploaded file %q: %w", fh.Filename, err)
		}
		files = append(files, imagestore.File{
			Name:        fh.Filename,
			ContentType: contentType,
			Reader:      f,
		})
	}
	return files, nil
}
