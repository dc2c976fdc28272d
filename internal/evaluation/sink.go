package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/petasbytes/weather-agent/internal/persona"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const DefaultResultsFile = "comparative_evaluation_results.csv"

// columnPrefix names each persona in the results header.
var columnPrefix = map[string]string{
	persona.Basic.Key:          "Basic",
	persona.ChainOfThought.Key: "CoT",
	persona.ReAct.Key:          "ReAct",
}

// Record is one rated comparison. Responses and Ratings are keyed by persona key.
type Record struct {
	Query     string
	Responses map[string]string
	Ratings   map[string]int
}

// NewRecord collects responses from Compare into a Record.
func NewRecord(query string, responses []Response) Record {
	rec := Record{Query: query, Responses: map[string]string{}, Ratings: map[string]int{}}
	for _, r := range responses {
		rec.Responses[r.Persona.Key] = r.Text
	}
	return rec
}

// row lays the record out in the fixed column order:
// query, <P>_response for each persona, then <P>_rating for each persona.
func (r Record) row() *orderedmap.OrderedMap[string, string] {
	m := orderedmap.New[string, string]()
	m.Set("query", r.Query)
	for _, p := range persona.All() {
		text, ok := r.Responses[p.Key]
		if !ok || text == "" {
			text = NoResponse
		}
		m.Set(columnPrefix[p.Key]+"_response", text)
	}
	for _, p := range persona.All() {
		rating := ""
		if n, ok := r.Ratings[p.Key]; ok {
			rating = strconv.Itoa(n)
		}
		m.Set(columnPrefix[p.Key]+"_rating", rating)
	}
	return m
}

// Header returns the results file's column names.
func Header() []string {
	keys, _ := split(Record{}.row())
	return keys
}

func split(m *orderedmap.OrderedMap[string, string]) (keys, values []string) {
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
		values = append(values, pair.Value)
	}
	return keys, values
}

// Sink appends records to a CSV file.
type Sink struct {
	Path string
}

func NewSink(path string) *Sink {
	if path == "" {
		path = DefaultResultsFile
	}
	return &Sink{Path: path}
}

// Append writes rec as one row, preceded by the header when the file is new
// or empty.
func (s *Sink) Append(rec Record) error {
	needHeader := false
	st, err := os.Stat(s.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		needHeader = true
	case err != nil:
		return fmt.Errorf("stat results file: %w", err)
	case st.Size() == 0:
		needHeader = true
	}

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	keys, values := split(rec.row())
	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(keys); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(values); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush results file: %w", err)
	}
	return f.Close()
}
