package tools_test

import (
	"testing"

	"github.com/petasbytes/weather-agent/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_ForecastInput(t *testing.T) {
	s := tools.WeatherForecastInputSchema

	assert.Equal(t, "object", s["type"])
	_, hasSchemaURI := s["$schema"]
	assert.False(t, hasSchemaURI)

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok, "properties missing: %#v", s)
	days, ok := props["days"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", days["type"])
	assert.EqualValues(t, 1, days["minimum"])
	assert.EqualValues(t, 10, days["maximum"])

	loc, ok := props["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", loc["type"])
	assert.Contains(t, loc["description"], "San Francisco")

	assert.ElementsMatch(t, []any{"location", "days"}, s["required"])
}

func TestGenerateSchema_OmitemptyIsOptional(t *testing.T) {
	type in struct {
		Query string `json:"query"`
		Limit int    `json:"limit,omitempty"`
	}
	s := tools.GenerateSchema[in]()
	assert.Equal(t, []any{"query"}, s["required"])
}
