package stores

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		integral bool
		want     string
	}{
		{"cents", "1299", true, "12.99"},
		{"threshold is inclusive", "1000", true, "10"},
		{"small integer stays major", "999", true, "999"},
		{"decimal stays major", "1299.50", false, "1299.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMinorUnits(decimal.RequireFromString(tt.value), tt.integral)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestSelectVariant(t *testing.T) {
	variants := []ProductVariant{
		{Label: "Lightly Played"},
		{Label: "Near Mint Foil"},
		{Label: "NM"},
	}
	got, ok := SelectVariant(variants, ConditionKeywords)
	require.True(t, ok)
	assert.Equal(t, "NM", got.Label)

	got, ok = SelectVariant(variants[:2], ConditionKeywords)
	require.True(t, ok)
	assert.Equal(t, "Near Mint Foil", got.Label)

	_, ok = SelectVariant([]ProductVariant{{Label: "Damaged"}}, ConditionKeywords)
	assert.False(t, ok)
}

func TestVariantExtractor_Strategies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{
			name: "ld-json offers",
			body: `<script type="application/ld+json">
				{"@context":"https://schema.org","@type":"Product","name":"Lightning Bolt",
				 "offers":[{"@type":"Offer","name":"Lightly Played","price":"1.50"},
				           {"@type":"Offer","name":"Near Mint","price":"2.25"}]}
			</script>`,
			want: 2.25,
		},
		{
			name: "product json in cents",
			body: `<script type="application/json" data-product-json>
				{"title":"Lightning Bolt","variants":[{"title":"Near Mint","price":1899},{"title":"Played","price":1099}]}
			</script>`,
			want: 18.99,
		},
		{
			name: "meta var",
			body: `<script>window.ShopifyAnalytics = window.ShopifyAnalytics || {};
				var meta = {"product":{"id":1,"variants":[{"id":2,"price":2450,"name":"Bolt - NM","public_title":"NM"}]},"page":{"pageType":"product"}};
				for (var attr in meta) {}</script>`,
			want: 24.50,
		},
		{
			name: "product var with braces in strings",
			body: `<script>var product = {"title":"Odd {name}","variants":[{"title":"Near Mint","price":"3.10"}]};</script>`,
			want: 3.10,
		},
	}

	ex := NewVariantExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ex.Extract(Page{URL: "u", Body: tt.body})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestVariantExtractor_FirstStructuredSuccessWins(t *testing.T) {
	body := `
		<meta property="og:price:amount" content="5.55">
		<script type="application/ld+json">{"@type":"Product","offers":{"name":"Played","price":"1.00"}}</script>
		<script>var product = {"variants":[{"title":"Near Mint","price":"9.99"}]};</script>`

	got, err := NewVariantExtractor().Extract(Page{URL: "u", Body: body})
	require.NoError(t, err)
	assert.Equal(t, 5.55, got, "ld-json matched structurally but had no NM variant, so the meta tag is used")
}

func TestVariantExtractor_Failure(t *testing.T) {
	_, err := NewVariantExtractor().Extract(Page{URL: "u", Body: `<html><body>Sold out</body></html>`})
	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestBalancedObject(t *testing.T) {
	obj, ok := balancedObject(` = {"a":"}\"{","b":{"c":1}}; tail`)
	require.True(t, ok)
	assert.Equal(t, `{"a":"}\"{","b":{"c":1}}`, obj)

	_, ok = balancedObject(`{"unterminated":`)
	assert.False(t, ok)
}
