package util

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TextContent returns the text of the input HTML, with tags removed,
// if any is found within the first 8000 bytes.
func TextContent(input io.Reader) string {

	tokenizer := html.NewTokenizerFragment(input, "body")
	tokenizer.SetMaxBuf(8192) // roughly the maximum number of bytes tokenized

	var text strings.Builder
	var offset = 0

	for {

		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // assuming tokenizer.Err() == io.EOF
		}

		if tt == html.TextToken {
			text.Write(tokenizer.Text())
		}

		offset += len(tokenizer.Raw())
		if offset > 8000 {
			break
		}
	}

	return strings.Join(strings.Fields(text.String()), " ")
}
