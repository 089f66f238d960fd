// Package extraction converts uploaded resume documents into plain text.
package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MIME types accepted by FromUpload.
const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
)

// FromUpload extracts plain text from an uploaded document based on its
// declared MIME type.
func FromUpload(mime string, data []byte) (string, error) {
	switch mime {
	case MimePDF:
		return Text(data)
	case MimeText:
		return strings.TrimSpace(string(data)), nil
	default:
		return "", &UnsupportedTypeError{Mime: mime}
	}
}

// Text extracts the textual content of a PDF document.
//
// Pages are visited in ascending order. The text items of each page are
// concatenated with single spaces in the order the parser reports them;
// pages are joined with a blank line and the final result is trimmed.
// Any parse failure, including parser panics on malformed input, is
// reported as a single *Error.
func Text(data []byte) (text string, err error) {
	// The underlying parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Cause: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if rerr != nil {
		return "", &Error{Cause: rerr}
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		items := make([]string, 0, len(page.Content().Text))
		for _, item := range page.Content().Text {
			items = append(items, item.S)
		}
		pages = append(pages, joinItems(items))
	}

	return strings.TrimSpace(strings.Join(pages, "\n\n")), nil
}

// joinItems concatenates the text items of one page with single spaces,
// skipping empty items so separators never double up.
func joinItems(items []string) string {
	kept := items[:0:0]
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		kept = append(kept, item)
	}
	return strings.Join(kept, " ")
}
