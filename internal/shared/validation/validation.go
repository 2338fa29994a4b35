package validation

import (
	"fmt"
	"strings"
)

// File describes an upload candidate as declared by the client.
type File struct {
	Name        string
	Size        int64
	ContentType string
}

// Options configures the checks applied by Validate.
type Options struct {
	MaxSizeMB         int
	AllowedMIMETypes  []string
	AllowedExtensions []string
}

// Result reports the outcome. Error is empty when Valid is true.
type Result struct {
	Valid bool
	Error string
}

const defaultMaxSizeMB = 50

// DefaultOptions accepts PDF and Word documents up to 50 MB.
func DefaultOptions() Options {
	return Options{
		MaxSizeMB: defaultMaxSizeMB,
		AllowedMIMETypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		AllowedExtensions: []string{"pdf", "doc", "docx"},
	}
}

// LogoOptions accepts common raster and vector images up to 5 MB.
func LogoOptions() Options {
	return Options{
		MaxSizeMB:         5,
		AllowedMIMETypes:  []string{"image/jpeg", "image/png", "image/webp", "image/svg+xml"},
		AllowedExtensions: []string{"jpg", "jpeg", "png", "webp", "svg"},
	}
}

// Validate checks emptiness, size, MIME type and extension, in that order,
// and reports the first failure.
func Validate(f File, opts Options) Result {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = defaultMaxSizeMB
	}
	accepted := strings.Join(opts.AllowedExtensions, ", ")

	if f.Size <= 0 {
		return Result{Error: "Arquivo está vazio"}
	}
	if f.Size > int64(opts.MaxSizeMB)*1024*1024 {
		return Result{Error: fmt.Sprintf("Arquivo muito grande. Tamanho máximo: %dMB", opts.MaxSizeMB)}
	}
	if len(opts.AllowedMIMETypes) > 0 && !contains(opts.AllowedMIMETypes, MediaType(f.ContentType)) {
		return Result{Error: "Tipo de arquivo não permitido. Tipos aceitos: " + accepted}
	}
	ext := Extension(f.Name)
	if ext == "" || !contains(opts.AllowedExtensions, ext) {
		return Result{Error: "Extensão não permitida. Extensões aceitas: " + accepted}
	}
	return Result{Valid: true}
}

// Extension returns the lower-cased text after the last dot of name, or ""
// when name has none.
func Extension(name string) string {
	name = strings.TrimSpace(name)
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// MediaType strips parameters from a Content-Type value.
func MediaType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
