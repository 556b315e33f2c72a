package view

import (
	"html/template"
	"net/url"
)

// ShareLink is one "share this article" button.
type ShareLink struct {
	Network string
	Label   string
	Href    string
	Icon    template.HTML
}

// ShareLinks builds the X, Facebook and LinkedIn share URLs for an article.
func ShareLinks(title, articleURL string) []ShareLink {
	escapedTitle := url.QueryEscape(title)
	escapedURL := url.QueryEscape(articleURL)

	return []ShareLink{
		{
			Network: "x",
			Label:   "Twitter",
			Href:    "https://twitter.com/intent/tweet?text=" + escapedTitle + "&url=" + escapedURL,
			Icon:    template.HTML(IconSVG("x")),
		},
		{
			Network: "facebook",
			Label:   "Facebook",
			Href:    "https://www.facebook.com/sharer/sharer.php?u=" + escapedURL,
			Icon:    template.HTML(IconSVG("facebook")),
		},
		{
			Network: "linkedin",
			Label:   "LinkedIn",
			Href:    "https://www.linkedin.com/shareArticle?mini=true&url=" + escapedURL + "&title=" + escapedTitle,
			Icon:    template.HTML(IconSVG("linkedin")),
		},
	}
}
