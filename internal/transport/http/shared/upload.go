package shared

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"gdp/internal/platform/validate"
)

const maxUploadMemory = 8 << 20

// Upload is one file read from a multipart form field.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// ReadUpload reads the "file" field of a multipart request. The MIME type comes from the
// part header, falling back to content sniffing.
func ReadUpload(r *http.Request) (Upload, error) {
	var issues validate.Issues
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		issues.Add("file", "must be sent as multipart/form-data")
		return Upload{}, issues.Err()
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		issues.Add("file", "is required")
		return Upload{}, issues.Err()
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, err
	}
	if len(data) == 0 {
		issues.Add("file", "is empty")
		return Upload{}, issues.Err()
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	mime, _, _ = strings.Cut(mime, ";")
	return Upload{Name: header.Filename, MimeType: strings.TrimSpace(mime), Data: data}, nil
}

// QueryInt reads an integer query parameter, returning fallback when absent or invalid.
func QueryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// QueryBool is true for "1", "true" and the like.
func QueryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
