package util

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugTrim    = regexp.MustCompile(`^-+|-+$`)
)

// Slugify 生成 URL 友好的 slug
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugTrim.ReplaceAllString(s, "")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// PtrString 用于将 string 转换为 *string
func PtrString(s string) *string {
	return &s
}
