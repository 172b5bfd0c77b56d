package format

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleList() *meterdomain.ListResponse {
	ref := "REF-1"
	return &meterdomain.ListResponse{
		Total:    2,
		Page:     1,
		PageSize: 20,
		Meters: []meterdomain.Response{
			{MeterID: 1, ExternalReference: &ref, SupplyStartDate: meterdomain.MustParseDate("2021-01-01"), Enabled: true, AnnualQuantity: 10},
			{MeterID: 2, SupplyStartDate: meterdomain.MustParseDate("2022-01-01"), AnnualQuantity: 2.5},
		},
	}
}

func TestNegotiate(t *testing.T) {
	cases := map[string]string{
		"":                               JSON,
		"*/*":                            JSON,
		"application/json":               JSON,
		"application/xml":                XML,
		"text/csv":                       CSV,
		"text/html":                      JSON,
		"text/html;q=0.9, text/csv;q=0.5": CSV,
		"application/xml;q=0.2, application/json;q=0.8": JSON,
	}
	for accept, want := range cases {
		assert.Equal(t, want, Negotiate(accept), accept)
	}
}

func TestRenderJSON(t *testing.T) {
	doc, err := Render("application/json", sampleList())
	require.NoError(t, err)
	assert.Equal(t, JSON, doc.ContentType)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc.Body), &out))
	assert.EqualValues(t, 2, out["total"])
	assert.Nil(t, out["next_page"])
	meters := out["meters"].([]any)
	first := meters[0].(map[string]any)
	assert.Equal(t, "2021-01-01", first["supply_start_date"])
	assert.Nil(t, first["supply_end_date"])
}

func TestRenderXMLIsParseable(t *testing.T) {
	doc, err := Render("application/xml", sampleList())
	require.NoError(t, err)
	assert.Equal(t, XML, doc.ContentType)
	assert.True(t, strings.HasPrefix(doc.Body, `<?xml version="1.0" encoding="UTF-8"?><root>`))

	var root struct {
		XMLName xml.Name `xml:"root"`
		Text    string   `xml:",chardata"`
	}
	require.NoError(t, xml.Unmarshal([]byte(doc.Body), &root))

	var out meterdomain.ListResponse
	require.NoError(t, json.Unmarshal([]byte(root.Text), &out))
	assert.Equal(t, int64(2), out.Total)
	assert.Len(t, out.Meters, 2)
}

func TestRenderCSV(t *testing.T) {
	doc, err := Render("text/csv", sampleList())
	require.NoError(t, err)
	assert.Equal(t, CSV, doc.ContentType)

	rows, err := csv.NewReader(strings.NewReader(doc.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, meterdomain.Columns, rows[0])
	assert.Contains(t, rows[0], "meter_id")
	assert.Equal(t, []string{"1", "REF-1", "2021-01-01", "", "true", "10"}, rows[1])
	assert.Equal(t, []string{"2", "", "2022-01-01", "", "false", "2.5"}, rows[2])
}

func TestRenderCSVEmptyListHasHeaderOnly(t *testing.T) {
	doc, err := Render("text/csv", &meterdomain.ListResponse{Meters: []meterdomain.Response{}})
	require.NoError(t, err)
	assert.Equal(t, strings.Join(meterdomain.Columns, ",")+"\n", doc.Body)
}

func TestRenderCSVSingleRecord(t *testing.T) {
	resp := &meterdomain.Response{MeterID: 9, SupplyStartDate: meterdomain.MustParseDate("2020-02-02"), Enabled: true, AnnualQuantity: 1}
	doc, err := Render("text/csv", resp)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(doc.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "9", rows[1][0])
}

func TestRenderCSVFallsBackForNonTabular(t *testing.T) {
	doc, err := Render("text/csv", map[string]string{"error": "boom"})
	require.NoError(t, err)
	assert.Equal(t, JSON, doc.ContentType)
	assert.JSONEq(t, `{"error":"boom"}`, doc.Body)
}
