// Package schema holds the structured output contract of a run and the
// validator that turns the model's final text into it.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/Rorical/RoriAtlas/internal/models"
)

// CityDetails is the record every successful run produces
type CityDetails struct {
	StateName      string `json:"state_name" yaml:"state_name" description:"Name of the state or province the city is in"`
	StateCapital   string `json:"state_capital" yaml:"state_capital" description:"Capital city of that state"`
	CountryName    string `json:"country_name" yaml:"country_name" description:"Name of the country the city is in"`
	CountryCapital string `json:"country_capital" yaml:"country_capital" description:"Capital city of that country"`
}

// Fields lists the record's JSON keys in declaration order
var Fields = []string{"state_name", "state_capital", "country_name", "country_capital"}

const responseFormatName = "city_details"

var (
	errNotObject    = errors.New("final text does not contain a JSON object")
	errMissing      = errors.New("required fields missing or blank")
	errWrongType    = errors.New("fields are not coercible to string")
	errMissingTyped = errors.New("required fields missing, blank, or not coercible to string")
)

// Validator parses final model text into CityDetails
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Parse implements the run's finalization step
func (v *Validator) Parse(text string) (*CityDetails, error) {
	return Parse(text)
}

// Parse extracts a JSON object from text and checks all four fields. The
// object may be wrapped in a Markdown code fence or surrounded by prose.
// Numbers and booleans are coerced to strings; null, arrays, objects and
// blank strings are rejected. No partial record is ever returned.
func Parse(text string) (*CityDetails, error) {
	obj, err := extractObject(text)
	if err != nil {
		return nil, &models.SchemaValidationError{Err: err}
	}

	values := make(map[string]string, len(Fields))
	var missing, mistyped []string
	for _, field := range Fields {
		val, exists := obj[field]
		if !exists || val == nil {
			missing = append(missing, field)
			continue
		}
		s, ok := coerce(val)
		if !ok {
			mistyped = append(mistyped, field)
			continue
		}
		if strings.TrimSpace(s) == "" {
			missing = append(missing, field)
			continue
		}
		values[field] = strings.TrimSpace(s)
	}

	switch {
	case len(missing) > 0 && len(mistyped) > 0:
		return nil, &models.SchemaValidationError{Fields: append(missing, mistyped...), Err: errMissingTyped}
	case len(missing) > 0:
		return nil, &models.SchemaValidationError{Fields: missing, Err: errMissing}
	case len(mistyped) > 0:
		return nil, &models.SchemaValidationError{Fields: mistyped, Err: errWrongType}
	}

	return &CityDetails{
		StateName:      values["state_name"],
		StateCapital:   values["state_capital"],
		CountryName:    values["country_name"],
		CountryCapital: values["country_capital"],
	}, nil
}

func coerce(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// extractObject finds the JSON object holding the answer. A fenced code
// block is searched first, then the whole text. Decoding is attempted at
// every '{' so braces in surrounding prose are skipped; an object carrying
// any record key beats one that does not.
func extractObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	candidates := []string{text}
	if start := strings.Index(text, "```"); start >= 0 {
		body := text[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			candidates = []string{strings.TrimSpace(body[:end]), text}
		}
	}

	var firstObj map[string]any
	var firstErr error
	for _, candidate := range candidates {
		for i := 0; i < len(candidate); i++ {
			if candidate[i] != '{' {
				continue
			}
			obj, err := decodeObject(candidate[i:])
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if hasRecordKey(obj) {
				return obj, nil
			}
			if firstObj == nil {
				firstObj = obj
			}
		}
	}

	switch {
	case firstObj != nil:
		return firstObj, nil
	case firstErr != nil:
		return nil, fmt.Errorf("%w: %v", errNotObject, firstErr)
	}
	return nil, errNotObject
}

// decodeObject reads one JSON object from the front of s, ignoring the rest
func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func hasRecordKey(obj map[string]any) bool {
	for _, field := range Fields {
		if _, ok := obj[field]; ok {
			return true
		}
	}
	return false
}

// ResponseFormat describes CityDetails as an OpenAI json_schema response
// format so the endpoint constrains the final answer to the record shape
func ResponseFormat() (*openai.ChatCompletionResponseFormat, error) {
	def, err := jsonschema.GenerateSchemaForType(CityDetails{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        responseFormatName,
			Description: "State, country and their capitals for the city in question",
			Schema:      def,
			Strict:      true,
		},
	}, nil
}
