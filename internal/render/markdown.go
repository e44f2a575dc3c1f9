// Package render turns wiki page HTML into terminal-friendly Markdown.
package render

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CleanPageHTML strips the chrome MediaWiki injects into rendered page text:
// scripts, styles, edit-section links, navboxes, and reference markers. What
// remains is the article body suitable for Markdown conversion.
func CleanPageHTML(pageHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, noscript, iframe, form, input, button").Remove()
	doc.Find(".mw-editsection, .navbox, .reference, .mw-references-wrap, .metadata").Remove()

	// Keep only the attributes downstream converters care about.
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			switch node.Data {
			case "a":
				if attr.Key == "href" || attr.Key == "title" {
					kept = append(kept, attr)
				}
			case "img":
				if attr.Key == "src" || attr.Key == "alt" {
					kept = append(kept, attr)
				}
			}
		}
		node.Attr = kept
	})

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// PageMarkdown converts rendered wiki page HTML into Markdown, resolving
// relative wiki links against baseURL so they stay clickable.
func PageMarkdown(pageHTML, baseURL string) (string, error) {
	cleaned, err := CleanPageHTML(pageHTML)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			if strings.HasPrefix(href, "/") {
				href = strings.TrimSuffix(baseURL, "/") + href
			}
			str := "[" + selec.Text() + "](" + href + ")"
			return &str
		},
	})

	return converter.ConvertString(cleaned)
}
