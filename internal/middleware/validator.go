package middleware

import (
	"fmt"
	"strings"
)

// Input validation and sanitization utilities

// ValidateUploadContentType checks that an upload is video or audio
func ValidateUploadContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") {
		return nil
	}
	return fmt.Errorf("file must be a video or audio file, got %q", contentType)
}

// ValidateFilename rejects names that could escape the upload dir
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("invalid filename")
	}
	return nil
}

// ValidateTextSize bounds the synchronous analysis input
func ValidateTextSize(text string, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	if len(text) > maxBytes {
		return fmt.Errorf("text too large: %d bytes (max %d)", len(text), maxBytes)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 50 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateOffset validates pagination offset
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
