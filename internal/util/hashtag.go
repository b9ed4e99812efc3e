package util

import (
	"regexp"
	"strings"
)

var hashtagRegex = regexp.MustCompile(`#([A-Za-z0-9_]+)`)

// ExtractHashtags 从正文中提取话题标签：匹配 #word，去掉前缀并统一小写。
// 重复出现的标签按原样保留。
func ExtractHashtags(content string) []string {
	matches := hashtagRegex.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}
