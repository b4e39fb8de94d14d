package utils

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// FilterDocument runs a jq program over a fetched resource document and
// returns the first result as a document. The value must stay an object
// so it fits the template envelope.
func FilterDocument(doc map[string]any, program string) (map[string]any, error) {
	query, err := gojq.Parse(program)
	if err != nil {
		return nil, fmt.Errorf("parsing jq filter: %w", err)
	}

	// round-trip so gojq sees plain JSON types
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var input any
	if err := json.Unmarshal(b, &input); err != nil {
		return nil, err
	}

	iter := query.Run(input)
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("jq filter %q produced no output", program)
	}
	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("jq filter: %w", err)
	}

	filtered, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("jq filter %q must produce an object, got %T", program, v)
	}
	return filtered, nil
}
