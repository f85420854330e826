package site

import (
	"bufio"
	"bytes"
	"html/template"
	"strings"

	"gitlab.com/golang-commonmark/markdown"
)

var markdownParser *markdown.Markdown = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// RenderMarkdown translates CommonMark to HTML. Raw HTML in the input is not
// passed through, article bodies come from organisation managers.
func RenderMarkdown(input string) template.HTML {

	// remove all tabs from the beginning of each line

	var unindentedContent = &bytes.Buffer{}

	lineScanner := bufio.NewScanner(strings.NewReader(input))
	for lineScanner.Scan() {
		line := lineScanner.Text()
		for len(line) > 0 && line[0] == '\t' {
			line = line[1:]
		}
		unindentedContent.WriteString(line)
		unindentedContent.WriteString("\n")
	}

	return template.HTML(markdownParser.RenderToString(unindentedContent.Bytes()))
}
