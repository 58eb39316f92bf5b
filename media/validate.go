package media

import (
	"path/filepath"
	"strings"
)

var allowedExtensions = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"mp4":  true,
	"mov":  true,
}

// ValidateUpload checks a multipart upload against the accepted types and
// the configured size ceiling. max <= 0 disables the size check.
func ValidateUpload(filename string, size, max int64) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowedExtensions[ext] {
		return ErrUnsupportedType
	}
	if max > 0 && size > max {
		return ErrTooLarge
	}
	return nil
}
