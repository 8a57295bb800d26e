// Package extract reduces HTML sources to the markup that gets counted and
// renders short plain previews of counted content.
package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// nonText lists elements whose content is never prose.
const nonText = "head, script, style, noscript, template, svg"

// Body returns the markup of an HTML document that should be counted.
//
// Parameters:
//   - content: io.Reader containing HTML content
//   - selector: optional CSS selector; when set, only matching elements are kept
//   - readable: if true (and no selector is given), go-readability picks the main content
//   - baseURL: optional URL for context during readability extraction (can be nil)
//
// Without selector or readable the whole <body> is returned. Script, style
// and similar elements are always dropped. The markup is returned as-is
// (tags included) so the counter's paragraph and tag rules apply to it.
func Body(content io.Reader, selector string, readable bool, baseURL *url.URL) (string, error) {
	switch {
	case selector != "":
		return selectElements(content, selector)
	case readable:
		return mainContent(content, baseURL)
	default:
		return wholeBody(content)
	}
}

func wholeBody(content io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(nonText).Remove()

	html, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML body: %w", err)
	}
	return strings.TrimSpace(html), nil
}

func mainContent(content io.Reader, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(content, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}
	return strings.TrimSpace(article.Content), nil
}

func selectElements(content io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(nonText).Remove()

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", selector)
	}

	var parts []string
	selection.Each(func(i int, s *goquery.Selection) {
		if html, err := goquery.OuterHtml(s); err == nil {
			parts = append(parts, html)
		}
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("failed to extract HTML from selection")
	}

	// line breaks count as word breaks, so adjacent elements stay apart
	return strings.Join(parts, "\n"), nil
}

// Excerpt renders markup as Markdown and returns its first maxWords words
// on one line, with "…" appended when text was cut. Annotations (<note>,
// <comment>) are left out.
func Excerpt(markup string, maxWords int) (string, error) {
	if maxWords <= 0 || strings.TrimSpace(markup) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}
	doc.Find("note, comment").Remove()

	html, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render markup: %w", err)
	}

	markdown, err := convertToMarkdown(html)
	if err != nil {
		return "", err
	}

	words := strings.Fields(markdown)
	if len(words) <= maxWords {
		return strings.Join(words, " "), nil
	}
	return strings.Join(words[:maxWords], " ") + "…", nil
}

// convertToMarkdown converts HTML string to clean Markdown
func convertToMarkdown(htmlString string) (string, error) {
	converter := md.NewConverter("", true, nil)

	markdown, err := converter.ConvertString(htmlString)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	cleaned := strings.TrimSpace(markdown)
	cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	return cleaned, nil
}
