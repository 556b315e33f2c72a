// Package view builds small presentation values (links, icons) shared by the
// public templates.
package view

import (
	"html/template"
	"net/url"
	"strings"
	"unicode"
)

// ContactLink 是联系页上的一行。
type ContactLink struct {
	Kind     string
	Label    string
	Href     string
	External bool
	Icon     template.HTML
}

// SafeHref 标记为可信 URL。Href 只会是 mailto:、tel: 或 http(s) 地址，
// html/template 默认会拦截 tel:。
func (l ContactLink) SafeHref() template.URL {
	return template.URL(l.Href)
}

// ContactDetails 是站点设置中与联系方式相关的原始值。
type ContactDetails struct {
	Email    string
	Phone    string
	X        string
	WhatsApp string
}

// ContactLinks 按 email、phone、X、WhatsApp 的顺序返回可用的链接，空值跳过。
func ContactLinks(details ContactDetails) []ContactLink {
	links := make([]ContactLink, 0, 4)

	if email := strings.TrimSpace(details.Email); email != "" {
		links = append(links, ContactLink{
			Kind:  "email",
			Label: email,
			Href:  "mailto:" + email,
		})
	}
	if phone := strings.TrimSpace(details.Phone); phone != "" {
		links = append(links, ContactLink{
			Kind:  "phone",
			Label: phone,
			Href:  "tel:" + stripSpaces(phone),
		})
	}
	if href := xProfileURL(details.X); href != "" {
		links = append(links, ContactLink{
			Kind:     "x",
			Label:    "X (Twitter)",
			Href:     href,
			External: true,
		})
	}
	if href := whatsAppURL(details.WhatsApp); href != "" {
		links = append(links, ContactLink{
			Kind:     "whatsapp",
			Label:    "WhatsApp",
			Href:     href,
			External: true,
		})
	}

	for i := range links {
		links[i].Icon = template.HTML(IconSVG(links[i].Kind))
	}
	return links
}

// xProfileURL 接受完整 URL、x.com/handle 或 @handle。
func xProfileURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if isHTTPURL(value) {
		return value
	}
	lower := strings.ToLower(value)
	for _, host := range []string{"x.com/", "twitter.com/", "www.x.com/", "www.twitter.com/"} {
		if strings.HasPrefix(lower, host) {
			return "https://" + value
		}
	}
	handle := strings.TrimPrefix(value, "@")
	if handle == "" {
		return ""
	}
	return "https://x.com/" + url.PathEscape(handle)
}

// whatsAppURL 接受完整 URL 或电话号码，号码只保留数字。
func whatsAppURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if isHTTPURL(value) {
		return value
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, value)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits
}

func isHTTPURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func stripSpaces(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}
