package util

import (
	"mime"
	"path/filepath"
	"strings"
)

// ContentType : определяет MIME type файла по расширению
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	case ".zip":
		return "application/zip"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return strings.Split(byExt, ";")[0]
	}
	return "application/octet-stream"
}
