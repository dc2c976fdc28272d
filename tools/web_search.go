package tools

import (
	"context"
	"strings"

	"github.com/tidwall/sjson"
)

const WebSearchName = "web_search"

const noSearchResult = "No relevant information found."

type WebSearchInput struct {
	Query string `json:"query" jsonschema_description:"The search query"`
}

var WebSearchInputSchema = GenerateSchema[WebSearchInput]()

var WebSearchDefinition = ToolDefinition{
	Name:        WebSearchName,
	Description: "Search for information on the web",
	InputSchema: WebSearchInputSchema,
	Function:    WebSearch,
}

// searchIndex is a canned knowledge base; order decides ties.
var searchIndex = []struct {
	key  string
	text string
}{
	{"weather forecast", "Weather forecasts predict atmospheric conditions, including temperature, precipitation, and wind, for a given location and time."},
	{"temperature conversion", "To convert Celsius to Fahrenheit: multiply by 9/5 and add 32. Reverse for Fahrenheit to Celsius."},
	{"climate change", "Climate change refers to significant, long-term changes in global temperatures and weather patterns."},
	{"severe weather", "Severe weather includes phenomena like tornadoes, hurricanes, and heavy snowfall that can cause damage."},
}

// WebSearch answers from the canned index by word overlap with the query.
func WebSearch(_ context.Context, args map[string]any) string {
	var in WebSearchInput
	if err := decodeArgs(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	words := wordSet(in.Query)
	best, bestScore := -1, 0
	for i, entry := range searchIndex {
		score := 0
		for w := range wordSet(entry.key) {
			if _, ok := words[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	result := noSearchResult
	if best >= 0 {
		result = searchIndex[best].text
	}
	out := "{}"
	out, _ = sjson.Set(out, "query", in.Query)
	out, _ = sjson.Set(out, "result", result)
	return out
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}
