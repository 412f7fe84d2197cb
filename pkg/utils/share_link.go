package utils

import (
	"regexp"
	"strings"
)

// ShareLinkPattern matches a short share link as it appears in text copied
// from the mobile app, e.g. "7.43 复制打开抖音 https://v.douyin.com/iRNBho6u/ ...".
var ShareLinkPattern = regexp.MustCompile(`https?://v\.douyin\.com/[a-zA-Z0-9_-]+`)

// ExtractShareURL returns the first share link found in text using pattern.
// When nothing matches, the trimmed text is returned so that plain URLs of
// other shapes still reach the upstream service.
func ExtractShareURL(pattern *regexp.Regexp, text string) string {
	text = strings.TrimSpace(text)
	if pattern == nil {
		return text
	}
	if match := pattern.FindString(text); match != "" {
		return match
	}
	return text
}
