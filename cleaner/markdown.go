package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

// NewMarkdownConverter creates a reusable, goroutine-safe Converter for
// product description blocks. The base plugin strips script, style and
// other non-content nodes; commonmark renders lists and emphasis.
func NewMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
}

// ToMarkdown converts an HTML fragment to Markdown.
//
// origin resolves relative links and image sources so the output is
// self-contained.
func ToMarkdown(conv *converter.Converter, htmlContent string, origin string) (string, error) {
	md, err := conv.ConvertString(htmlContent, converter.WithDomain(origin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
