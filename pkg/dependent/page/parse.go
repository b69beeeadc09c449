package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-bakery/pkg/dependent"
)

// Parse builds a document from rendered form markup. Every select carrying an
// id is registered with its options and the option marked selected (or the
// first option, matching browser defaults); every label with a for attribute
// is registered with its trimmed text.
func Parse(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, fmt.Errorf("page: missing reader")
	}
	markup, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("page: parse markup: %w", err)
	}

	doc := New()
	markup.Find("select[id]").Each(func(_ int, sel *goquery.Selection) {
		id := strings.TrimSpace(sel.AttrOr("id", ""))
		if id == "" {
			return
		}

		var (
			options  []dependent.Option
			selected string
			hasMark  bool
		)
		sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
			text := strings.TrimSpace(opt.Text())
			value, ok := opt.Attr("value")
			if !ok {
				value = text
			}
			options = append(options, dependent.Option{Value: value, Text: text})
			if _, marked := opt.Attr("selected"); marked {
				selected = value
				hasMark = true
			}
		})

		element := doc.AddSelect(id, options, "")
		if hasMark {
			element.SetValue(selected)
		}
	})

	markup.Find("label[for]").Each(func(_ int, label *goquery.Selection) {
		forID := strings.TrimSpace(label.AttrOr("for", ""))
		if forID == "" {
			return
		}
		doc.AddLabel(forID, strings.TrimSpace(label.Text()))
	})

	return doc, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}
