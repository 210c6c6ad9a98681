package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadSize — лимит формы урока на загружаемую схему.
const MaxUploadSize = 2 * 1024 * 1024

var (
	ErrUploadType     = errors.New("file type not allowed")
	ErrUploadTooLarge = errors.New("file too large")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
}

// AllowedUpload проверяет файл по правилам формы урока, куда пользователь
// вручную загружает скачанную схему.
func AllowedUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%q: %w", filename, ErrUploadType)
	}
	if size > MaxUploadSize {
		return fmt.Errorf("%d bytes: %w", size, ErrUploadTooLarge)
	}
	return nil
}
