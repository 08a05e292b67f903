package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// SourceDocument is one ingested document before splitting.
type SourceDocument struct {
	// Source identifies where the document came from (file path or URL).
	Source string

	// Content is the extracted plain text.
	Content string
}

// LoadPDF extracts the page text of a PDF file.
func LoadPDF(path string) (*SourceDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PDF %s: %w", path, err)
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}

	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d of %s: %w", i+1, path, err)
		}
		buf.WriteString(text)
		if i < numPages-1 {
			buf.WriteByte('\n')
		}
	}

	return &SourceDocument{Source: path, Content: buf.String()}, nil
}

// LoadJSON reads a JSON array and turns each element into a document.
// String elements are used as-is; other values are re-marshaled compactly.
func LoadJSON(path string) ([]SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading JSON %s: %w", path, err)
	}

	var elements []interface{}
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("parsing JSON %s: expected a top-level array: %w", path, err)
	}

	docs := make([]SourceDocument, 0, len(elements))
	for i, el := range elements {
		var content string
		switch v := el.(type) {
		case string:
			content = v
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("re-marshaling element %d of %s: %w", i, path, err)
			}
			content = string(raw)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		docs = append(docs, SourceDocument{
			Source:  fmt.Sprintf("%s#%d", path, i),
			Content: content,
		})
	}
	return docs, nil
}

var whitespaceRe = regexp.MustCompile(`[ \t]+`)
var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// LoadWebsite fetches a single page and extracts its visible text. Scripts,
// styles, and navigation chrome are stripped.
func LoadWebsite(ctx context.Context, url string) (*SourceDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "contentd/1.0")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", url, err)
	}

	doc.Find("script, style, noscript, nav, header, footer").Remove()

	text := doc.Find("body").Text()
	text = whitespaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("no extractable text at %s", url)
	}
	return &SourceDocument{Source: url, Content: text}, nil
}
