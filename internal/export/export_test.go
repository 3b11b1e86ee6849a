package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtg-price-finder/internal/deck"
	"github.com/ramonehamilton/mtg-price-finder/internal/printing"
	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

func ptr(v float64) *float64 { return &v }

func sampleReport() deck.Report {
	ftf := stores.Quote{Store: stores.FaceToFace, Price: ptr(2.50), Currency: "CAD"}
	wt := stores.NewFailedQuote(stores.WizardsTower, "", &stores.FetchError{Kind: stores.KindNotFound})
	return deck.Report{
		ID:     "run-1",
		Stores: []stores.StoreID{stores.FaceToFace, stores.WizardsTower},
		Rows: []deck.Evaluation{
			{
				Line:           deck.Line{Quantity: 4, Name: "Lightning Bolt"},
				Printing:       &printing.Printing{Name: "Lightning Bolt", SetCode: "m10", SetName: "Magic 2010", CollectorNumber: "146"},
				Quotes:         []stores.Quote{ftf, wt},
				Cheapest:       &ftf,
				ReferencePrice: ptr(2.04),
			},
			{
				Line: deck.Line{Quantity: 1, Name: "Lightnig Bolt"},
				Err:  fmt.Errorf("%w: %q", printing.ErrCatalogNotFound, "Lightnig Bolt"),
			},
		},
		Totals:        map[stores.StoreID]float64{stores.FaceToFace: 10, stores.WizardsTower: 0},
		CheapestTotal: 10,
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromPath("out/deck.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = FormatFromPath("deck.xlsx")
	assert.Error(t, err)
}

func TestExportToWriter_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportToWriter(&buf, FormatCSV, FromReport(sampleReport()), false))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	want := [][]string{
		{"Quantity", "Name", "Set", "Number", "facetoface", "wizardstower", "Cheapest Store", "Cheapest Price", "Reference Price", "Error"},
		{"4", "Lightning Bolt", "m10", "146", "2.50", "", "facetoface", "2.50", "2.04", ""},
		{"1", "Lightnig Bolt", "", "", "", "", "", "", "", "catalog-not-found"},
		{"", "Total", "", "", "10.00", "0.00", "", "10.00", "", ""},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("CSV records mismatch (-want +got):\n%s", diff)
	}
}

func TestExportToWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportToWriter(&buf, FormatJSON, FromReport(sampleReport()), true))

	var got DeckExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.ID)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, stores.FaceToFace, got.Rows[0].CheapestStore)
	assert.Nil(t, got.Rows[0].Prices[stores.WizardsTower])
	assert.Equal(t, "catalog-not-found", got.Rows[1].Error)
	assert.InDelta(t, 10.0, got.CheapestTotal, 1e-9)
}

func TestExporter_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deck.csv")
	d := FromReport(sampleReport())

	require.NoError(t, NewExporter(Options{Format: FormatCSV, FilePath: path}).Export(d))
	_, err := os.Stat(path)
	require.NoError(t, err)

	err = NewExporter(Options{Format: FormatCSV, FilePath: path}).Export(d)
	assert.ErrorContains(t, err, "already exists")

	assert.NoError(t, NewExporter(Options{Format: FormatJSON, FilePath: path, Overwrite: true}).Export(d))
}

func TestGenerateFilename(t *testing.T) {
	name := GenerateFilename("deck", FormatCSV)
	assert.Regexp(t, `^deck_\d{8}_\d{6}\.csv$`, name)
}
