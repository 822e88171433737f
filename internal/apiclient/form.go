package apiclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"storefront/internal/models"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Form is a multipart payload: scalar fields as strings plus file parts.
// Passing a *Form as a request body switches the request to multipart/form-data.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	name   string
	upload *models.Upload
}

// NewForm returns an empty multipart payload.
func NewForm() *Form {
	return &Form{}
}

// Set adds a scalar field.
func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File attaches an upload under the given field name (image, evidence, receipt).
func (f *Form) File(name string, upload *models.Upload) *Form {
	f.files = append(f.files, formFile{name: name, upload: upload})
	return f
}

// encode writes the multipart body. Each file part carries its own content type.
func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", fld.name, err)
		}
	}
	for _, ff := range f.files {
		if ff.upload == nil {
			return nil, "", fmt.Errorf("file field %s has no content", ff.name)
		}
		contentType := ff.upload.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(ff.name), quoteEscaper.Replace(ff.upload.Filename)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %s: %w", ff.name, err)
		}
		if _, err := part.Write(ff.upload.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write part %s: %w", ff.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
