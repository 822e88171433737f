package workflow

import (
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/gabriel-vasile/mimetype"
)

// Attachment kinds an order can carry.
const (
	KindEvidence = "evidence"
	KindReceipt  = "receipt"
)

// imageUpload checks that an upload holds an image and fills in its content
// type from the bytes when the client sent none.
func imageUpload(field string, u *models.Upload) (*models.Upload, error) {
	mt := mimetype.Detect(u.Content)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s is %s, not an image", ErrMalformedUpload, field, mt.String())
	}
	out := *u
	if out.ContentType == "" || out.ContentType == "application/octet-stream" {
		out.ContentType = mt.String()
	}
	if out.Filename == "" {
		out.Filename = field + mt.Extension()
	}
	return &out, nil
}

// rebuild wraps stored bytes into an upload with an explicit image MIME type.
func rebuild(kind string, orderID int, content models.Binary) (*models.Upload, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: order %d has no %s", ErrNoAttachment, orderID, kind)
	}
	mt := mimetype.Detect(content)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: stored %s of order %d is %s", ErrMalformedUpload, kind, orderID, mt.String())
	}
	return &models.Upload{
		Filename:    fmt.Sprintf("%s-%d%s", kind, orderID, mt.Extension()),
		ContentType: mt.String(),
		Content:     []byte(content),
	}, nil
}
