package utils

import (
	"net/http"
	"strings"
)

// IsJpeg reports whether the declared content type and the file's leading
// bytes both describe a JPEG. Sniffing guards against clients that upload
// arbitrary files with a forged Content-Type header.
func IsJpeg(declared string, head []byte) bool {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "image/jpeg" && declared != "image/jpg" {
		return false
	}
	if len(head) == 0 {
		return false
	}
	return http.DetectContentType(head) == "image/jpeg"
}
