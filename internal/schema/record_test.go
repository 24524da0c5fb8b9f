package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriAtlas/internal/models"
)

const gwalior = `{"state_name":"Madhya Pradesh","state_capital":"Bhopal","country_name":"India","country_capital":"New Delhi"}`

func TestParse(t *testing.T) {
	want := &CityDetails{
		StateName:      "Madhya Pradesh",
		StateCapital:   "Bhopal",
		CountryName:    "India",
		CountryCapital: "New Delhi",
	}

	tests := []struct {
		name string
		text string
	}{
		{name: "bare object", text: gwalior},
		{name: "fenced with language", text: "```json\n" + gwalior + "\n```"},
		{name: "fenced without language", text: "```\n" + gwalior + "\n```"},
		{name: "surrounded by prose", text: "Here you go: " + gwalior + " Hope that helps."},
		{name: "braces in leading prose", text: "Based on the search results {see above}, here is the answer: " + gwalior},
		{name: "empty object before answer", text: "Ignoring {} as a placeholder, the record is " + gwalior + " {done}"},
		{name: "fence after braced prose", text: "Result {1 of 1}:\n```json\n" + gwalior + "\n```"},
		{name: "padded values", text: `{"state_name":" Madhya Pradesh ","state_capital":"Bhopal","country_name":"India","country_capital":"New Delhi"}`},
		{name: "extra fields ignored", text: `{"city":"Gwalior","state_name":"Madhya Pradesh","state_capital":"Bhopal","country_name":"India","country_capital":"New Delhi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseCoercesScalars(t *testing.T) {
	got, err := Parse(`{"state_name":"X","state_capital":42,"country_name":true,"country_capital":"Y"}`)
	require.NoError(t, err)
	assert.Equal(t, "42", got.StateCapital)
	assert.Equal(t, "true", got.CountryName)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		fields []string
	}{
		{
			name:   "missing country capital",
			text:   `{"state_name":"Madhya Pradesh","state_capital":"Bhopal","country_name":"India"}`,
			fields: []string{"country_capital"},
		},
		{
			name:   "null field",
			text:   `{"state_name":null,"state_capital":"Bhopal","country_name":"India","country_capital":"New Delhi"}`,
			fields: []string{"state_name"},
		},
		{
			name:   "blank field",
			text:   `{"state_name":"  ","state_capital":"Bhopal","country_name":"India","country_capital":"New Delhi"}`,
			fields: []string{"state_name"},
		},
		{
			name:   "nested object",
			text:   `{"state_name":{"en":"MP"},"state_capital":"Bhopal","country_name":"India","country_capital":["New Delhi"]}`,
			fields: []string{"state_name", "country_capital"},
		},
		{
			name:   "missing and mistyped",
			text:   `{"state_name":"MP","state_capital":[],"country_name":"India"}`,
			fields: []string{"country_capital", "state_capital"},
		},
		{name: "plain prose", text: "Gwalior is in Madhya Pradesh, India."},
		{name: "broken json", text: `{"state_name": "MP",}`},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			assert.Nil(t, got)

			var schemaErr *models.SchemaValidationError
			require.True(t, errors.As(err, &schemaErr), "got %T: %v", err, err)
			assert.Equal(t, tt.fields, schemaErr.Fields)
		})
	}
}

func TestResponseFormat(t *testing.T) {
	format, err := ResponseFormat()
	require.NoError(t, err)
	require.NotNil(t, format.JSONSchema)
	assert.Equal(t, "city_details", format.JSONSchema.Name)
	assert.True(t, format.JSONSchema.Strict)

	raw, err := json.Marshal(format.JSONSchema.Schema)
	require.NoError(t, err)

	var doc struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "object", doc.Type)
	assert.ElementsMatch(t, Fields, doc.Required)
	for _, field := range Fields {
		assert.Contains(t, doc.Properties, field)
	}
}
