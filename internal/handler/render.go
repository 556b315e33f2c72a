package handler

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// 编辑器产出 HTML，也允许 Markdown；原始 HTML 块放行后再统一清洗
	contentEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	sanitizer = bluemonday.UGCPolicy()
	stripper  = bluemonday.StrictPolicy()
)

// renderContent 把文章正文或关于页内容转为安全的 HTML。
func renderContent(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := contentEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// plainExcerpt 去掉所有标签并截断到 limit 个字符。
func plainExcerpt(content string, limit int) string {
	text := strings.Join(strings.Fields(stripper.Sanitize(content)), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
