package stores

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// Extractor reads a price from a rendered page.
type Extractor interface {
	Extract(page Page) (float64, error)
}

// PriceSelector is a CSS selector plus the attribute holding the price;
// an empty Attr reads the element text.
type PriceSelector struct {
	Selector string
	Attr     string
}

// DefaultPriceSelectors are the common price-bearing elements, tried in order.
var DefaultPriceSelectors = []PriceSelector{
	{Selector: `[itemprop="price"]`, Attr: "content"},
	{Selector: `[itemprop="price"]`},
	{Selector: `meta[property="product:price:amount"]`, Attr: "content"},
	{Selector: `.product-price`},
	{Selector: `.price`},
	{Selector: `[data-price]`, Attr: "data-price"},
}

// SelectorExtractor returns the first numeric match among its selectors.
type SelectorExtractor struct {
	Selectors []PriceSelector
}

// NewSelectorExtractor uses DefaultPriceSelectors when none are given.
func NewSelectorExtractor(selectors ...PriceSelector) *SelectorExtractor {
	if len(selectors) == 0 {
		selectors = DefaultPriceSelectors
	}
	return &SelectorExtractor{Selectors: selectors}
}

// Extract implements Extractor.
func (e *SelectorExtractor) Extract(page Page) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return 0, &FetchError{Kind: KindParseFailure, URL: page.URL, Err: err}
	}

	if price, ok := firstSelectorPrice(doc, e.Selectors); ok {
		return price, nil
	}
	return 0, &FetchError{Kind: KindParseFailure, URL: page.URL}
}

func firstSelectorPrice(doc *goquery.Document, selectors []PriceSelector) (float64, bool) {
	for _, ps := range selectors {
		var (
			price float64
			found bool
		)
		doc.Find(ps.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			raw := s.Text()
			if ps.Attr != "" {
				v, ok := s.Attr(ps.Attr)
				if !ok {
					return true
				}
				raw = v
			}
			price, found = ParsePrice(raw)
			return !found
		})
		if found {
			return price, true
		}
	}
	return 0, false
}

// numberToken is the first number in the text: digits with optional thousands
// separators and decimals. The integer part may be missing, as in ".99".
var numberToken = regexp.MustCompile(`(?:\d[\d,]*)?\.?\d+`)

// ParsePrice pulls a positive price out of display text such as "CA$1,234.50".
// Currency symbols and words are ignored; commas are thousands separators.
func ParsePrice(text string) (float64, bool) {
	tok := numberToken.FindString(text)
	if tok == "" {
		return 0, false
	}
	tok = strings.ReplaceAll(tok, ",", "")
	if strings.HasPrefix(tok, ".") {
		tok = "0" + tok
	}
	d, err := decimal.NewFromString(tok)
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	return d.Round(2).InexactFloat64(), true
}
