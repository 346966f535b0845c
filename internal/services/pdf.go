package services

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrMalformedDocument is returned when the uploaded bytes cannot be
	// parsed as a PDF.
	ErrMalformedDocument = errors.New("malformed pdf document")
)

// PageLimitError is returned when a document has more pages than the
// configured maximum.
type PageLimitError struct {
	Pages int
	Max   int
}

func (e *PageLimitError) Error() string {
	return fmt.Sprintf("pdf has %d pages, maximum allowed is %d", e.Pages, e.Max)
}

// PDFService extracts cleaned plain text from uploaded PDF bytes.
type PDFService struct {
	maxPages int
}

func NewPDFService(maxPages int) *PDFService {
	if maxPages <= 0 {
		maxPages = 5
	}
	return &PDFService{maxPages: maxPages}
}

var (
	spaceRuns    = regexp.MustCompile(` {2,}`)
	newlineRuns  = regexp.MustCompile(`\n{3,}`)
	wsRuns       = regexp.MustCompile(`\s+`)
	digitsOnly   = regexp.MustCompile(`^[0-9]+$`)
	symbolsOnly  = regexp.MustCompile(`^[^\w\s]*$`)
	sentenceGlue = regexp.MustCompile(`\.([A-Z])`)
)

// ExtractText parses the PDF, extracts per-page text with page-boundary
// markers, and applies noise filtering. It returns the cleaned text plus the
// page count.
func (s *PDFService) ExtractText(data []byte) (text string, pages int, err error) {
	// The pdf package panics on some malformed files instead of returning
	// an error, so recover and report those as malformed input.
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("%w: %v", ErrMalformedDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	pages = reader.NumPage()
	if pages > s.maxPages {
		return "", pages, &PageLimitError{Pages: pages, Max: s.maxPages}
	}

	var builder strings.Builder
	for num := 1; num <= pages; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}
		raw, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		cleaned := cleanPageText(raw)
		if cleaned == "" {
			continue
		}
		fmt.Fprintf(&builder, "\n\n--- Page %d ---\n\n%s", num, cleaned)
	}

	return finalCleanup(builder.String()), pages, nil
}

// cleanPageText drops the usual per-page noise: page numbers, decorative
// separator lines, and tiny fragments left over from headers and footers.
func cleanPageText(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(wsRuns.ReplaceAllString(line, " "))
		if len(line) < 3 {
			continue
		}
		if digitsOnly.MatchString(line) {
			continue
		}
		if symbolsOnly.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func finalCleanup(text string) string {
	if text == "" {
		return ""
	}
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	// PDF extraction often loses the space after a sentence break.
	text = sentenceGlue.ReplaceAllString(text, ". $1")
	return strings.TrimSpace(text)
}
