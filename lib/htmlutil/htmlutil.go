package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText drops non-printable characters, trims the string and collapses
// runs of whitespace into a single space.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return s
}

// Text returns the cleaned text of the first node in the selection.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return CleanText(GetText(sel.Get(0)))
}

// Option is an <option> of a <select> control.
type Option struct {
	Value    string
	Text     string
	Selected bool
}

// SelectOptions returns the options of the <select> named `name` in document order.
func SelectOptions(doc *goquery.Selection, name string) []Option {
	var options []Option
	doc.Find("select").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("name", "") == name
	}).First().Find("option").Each(func(_ int, s *goquery.Selection) {
		_, selected := s.Attr("selected")
		options = append(options, Option{
			Value:    strings.TrimSpace(s.AttrOr("value", "")),
			Text:     Text(s),
			Selected: selected,
		})
	})
	return options
}
