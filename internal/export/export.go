// Package export renders a finished article into one of the downloadable
// document formats. Rendering is a pure function of the article: re-exporting
// the same article in the same format yields byte-identical output.
package export

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/anirudh-hegde/scribe/models"
)

// ErrUnsupportedFormat is returned for a format outside the fixed enum. With
// a fixed selector it should be unreachable; it fails the action, not the
// session.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Render produces the document for the chosen format.
func Render(article *models.Article, format models.ExportFormat) (string, error) {
	if article == nil || strings.TrimSpace(article.Body) == "" {
		return "", fmt.Errorf("%w: article is empty", models.ErrValidation)
	}
	switch format {
	case models.FormatText:
		return article.Title + "\n\n" + article.Body + "\n", nil
	case models.FormatMarkdown:
		return "# " + article.Title + "\n\n" + article.Body + "\n", nil
	case models.FormatHTML:
		return renderHTML(article), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func renderHTML(article *models.Article) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<meta charset=\"UTF-8\">\n<title>%s</title>\n", html.EscapeString(article.Title))
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<div class=\"meta\">Language: %s | Version: %d</div>\n", article.Language, article.Version)
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(article.Title))
	for _, para := range strings.Split(article.Body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// Filename derives the download filename from the article title.
func Filename(article *models.Article, format models.ExportFormat) string {
	base := strings.NewReplacer(" ", "_", "/", "_").Replace(article.Title)
	return base + "_research_article." + Extension(format)
}

// Extension returns the file extension for a format.
func Extension(format models.ExportFormat) string {
	switch format {
	case models.FormatMarkdown:
		return "md"
	case models.FormatHTML:
		return "html"
	default:
		return "txt"
	}
}

// ContentType returns the MIME type served for a format.
func ContentType(format models.ExportFormat) string {
	switch format {
	case models.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case models.FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
