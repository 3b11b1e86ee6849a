package stores

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// MinorUnitThreshold is the magnitude at which an integral price is read as cents.
const MinorUnitThreshold = 1000

// ConditionKeywords select the condition tier that is priced. Matching is a
// case-insensitive substring test on the variant label.
var ConditionKeywords = []string{"near mint", "nm"}

// ProductVariant is one purchasable variant found in embedded product data.
type ProductVariant struct {
	Label string
	Price Amount
}

// ProductPayload is the structured product data embedded in a page.
type ProductPayload struct {
	Title    string
	Variants []ProductVariant
}

// Strategy extracts structured product data from raw page text.
type Strategy struct {
	Name    string
	Extract func(body string) (*ProductPayload, bool)
}

// DefaultStrategies are tried in order; the first structured success wins.
var DefaultStrategies = []Strategy{
	{Name: "ld-json", Extract: extractLDJSON},
	{Name: "product-json", Extract: extractProductJSON},
	{Name: "meta-var", Extract: scriptVarStrategy("var meta =", "product")},
	{Name: "product-var", Extract: scriptVarStrategy("ShopifyAnalytics.meta.product =", "", "var product =", "window.product =")},
}

// VariantExtractor prices a specific condition variant from embedded product
// data, falling back to the page's price metadata tag.
type VariantExtractor struct {
	Strategies []Strategy
	Keywords   []string
}

// NewVariantExtractor returns an extractor using the default strategies.
func NewVariantExtractor() *VariantExtractor {
	return &VariantExtractor{Strategies: DefaultStrategies, Keywords: ConditionKeywords}
}

// Extract implements Extractor.
func (e *VariantExtractor) Extract(page Page) (float64, error) {
	for _, s := range e.Strategies {
		payload, ok := s.Extract(page.Body)
		if !ok {
			continue
		}
		if v, ok := SelectVariant(payload.Variants, e.Keywords); ok {
			if price, ok := v.Price.Major(); ok {
				return price, nil
			}
		}
		break
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err == nil {
		if price, ok := firstSelectorPrice(doc, metaPriceSelectors); ok {
			return price, nil
		}
	}
	return 0, &FetchError{Kind: KindParseFailure, URL: page.URL}
}

var metaPriceSelectors = []PriceSelector{
	{Selector: `meta[property="og:price:amount"]`, Attr: "content"},
	{Selector: `meta[property="product:price:amount"]`, Attr: "content"},
}

// SelectVariant returns the first variant whose label matches a keyword,
// preferring non-foil labels.
func SelectVariant(variants []ProductVariant, keywords []string) (ProductVariant, bool) {
	var foilMatch *ProductVariant
	for i, v := range variants {
		label := strings.ToLower(v.Label)
		if !matchesAny(label, keywords) {
			continue
		}
		if strings.Contains(label, "foil") {
			if foilMatch == nil {
				foilMatch = &variants[i]
			}
			continue
		}
		return v, true
	}
	if foilMatch != nil {
		return *foilMatch, true
	}
	return ProductVariant{}, false
}

func matchesAny(label string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(label, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Amount is a price as found in JSON, either a number or a numeric string.
type Amount struct {
	Value    decimal.Decimal
	Integral bool
	Valid    bool
}

// UnmarshalJSON accepts 12.99, "12.99" and 1299.
func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if raw == "" || raw == "null" {
		*a = Amount{}
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		*a = Amount{}
		return nil
	}
	*a = Amount{Value: d, Integral: !strings.Contains(raw, "."), Valid: true}
	return nil
}

// Major returns the amount in major currency units.
func (a Amount) Major() (float64, bool) {
	if !a.Valid {
		return 0, false
	}
	d := NormalizeMinorUnits(a.Value, a.Integral)
	if !d.IsPositive() {
		return 0, false
	}
	return d.Round(2).InexactFloat64(), true
}

// NormalizeMinorUnits divides integral values at or above MinorUnitThreshold by
// 100, treating them as cents. Decimal values are already major units.
func NormalizeMinorUnits(v decimal.Decimal, integral bool) decimal.Decimal {
	if integral && v.GreaterThanOrEqual(decimal.NewFromInt(MinorUnitThreshold)) {
		return v.Div(decimal.NewFromInt(100))
	}
	return v
}

type ldOffer struct {
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	ItemCondition string `json:"itemCondition"`
	Price         Amount `json:"price"`
}

type ldProduct struct {
	Type   any             `json:"@type"`
	Name   string          `json:"name"`
	Offers json.RawMessage `json:"offers"`
	Graph  []ldProduct     `json:"@graph"`
}

func extractLDJSON(body string) (*ProductPayload, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, false
	}

	var payload *ProductPayload
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var products []ldProduct
		text := strings.TrimSpace(s.Text())
		if strings.HasPrefix(text, "[") {
			if json.Unmarshal([]byte(text), &products) != nil {
				return true
			}
		} else {
			var p ldProduct
			if json.Unmarshal([]byte(text), &p) != nil {
				return true
			}
			products = append([]ldProduct{p}, p.Graph...)
		}
		for _, p := range products {
			if pl, ok := ldPayload(p); ok {
				payload = pl
				return false
			}
		}
		return true
	})
	return payload, payload != nil
}

func ldPayload(p ldProduct) (*ProductPayload, bool) {
	if !isProductType(p.Type) || len(p.Offers) == 0 {
		return nil, false
	}

	var offers []ldOffer
	if json.Unmarshal(p.Offers, &offers) != nil {
		var one ldOffer
		if json.Unmarshal(p.Offers, &one) != nil {
			return nil, false
		}
		offers = []ldOffer{one}
	}

	payload := &ProductPayload{Title: p.Name}
	for _, o := range offers {
		label := strings.TrimSpace(strings.Join([]string{o.Name, o.SKU, conditionName(o.ItemCondition)}, " "))
		payload.Variants = append(payload.Variants, ProductVariant{Label: label, Price: o.Price})
	}
	return payload, len(payload.Variants) > 0
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, x := range v {
			if s, ok := x.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// conditionName turns "https://schema.org/NewCondition" into "NewCondition".
func conditionName(c string) string {
	if i := strings.LastIndex(c, "/"); i >= 0 {
		return c[i+1:]
	}
	return c
}

// shopifyProduct covers the product objects Shopify themes embed.
type shopifyProduct struct {
	Title    string `json:"title"`
	Variants []struct {
		Title       string `json:"title"`
		PublicTitle string `json:"public_title"`
		Name        string `json:"name"`
		Option1     string `json:"option1"`
		Price       Amount `json:"price"`
	} `json:"variants"`
}

func (p shopifyProduct) payload() (*ProductPayload, bool) {
	payload := &ProductPayload{Title: p.Title}
	for _, v := range p.Variants {
		label := v.PublicTitle
		for _, alt := range []string{v.Title, v.Option1, v.Name} {
			if label == "" {
				label = alt
			}
		}
		payload.Variants = append(payload.Variants, ProductVariant{Label: label, Price: v.Price})
	}
	return payload, len(payload.Variants) > 0
}

func extractProductJSON(body string) (*ProductPayload, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, false
	}

	var payload *ProductPayload
	doc.Find(`script[data-product-json], script[id^="ProductJson"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var p shopifyProduct
		if json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &p) != nil {
			return true
		}
		if pl, ok := p.payload(); ok {
			payload = pl
			return false
		}
		return true
	})
	return payload, payload != nil
}

// scriptVarStrategy finds an inline assignment such as `var meta = {...};` and
// decodes the object (or its field) as a Shopify product.
func scriptVarStrategy(pattern, field string, more ...string) func(string) (*ProductPayload, bool) {
	patterns := append([]string{pattern}, more...)
	return func(body string) (*ProductPayload, bool) {
		for _, pat := range patterns {
			idx := strings.Index(body, pat)
			if idx < 0 {
				continue
			}
			obj, ok := balancedObject(body[idx+len(pat):])
			if !ok {
				continue
			}

			var p shopifyProduct
			if field == "" {
				if json.Unmarshal([]byte(obj), &p) != nil {
					continue
				}
			} else {
				var wrapper map[string]json.RawMessage
				if json.Unmarshal([]byte(obj), &wrapper) != nil {
					continue
				}
				if json.Unmarshal(wrapper[field], &p) != nil {
					continue
				}
			}
			if pl, ok := p.payload(); ok {
				return pl, true
			}
		}
		return nil, false
	}
}

// balancedObject returns the first complete {...} JSON object in s, honouring
// string literals and escapes.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
