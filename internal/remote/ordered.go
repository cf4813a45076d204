package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/verte-zerg/morfo/internal/model"
)

// orderedAnalyses decodes a JSON object into analyses, keeping key order.
type orderedAnalyses []model.Analysis

func (o *orderedAnalyses) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decomposition must be an object, got %v", tok)
	}
	out := orderedAnalyses{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out = append(out, model.Analysis{Lexeme: key, Description: describeRaw(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

// describeRaw renders a string value as-is and anything else as compact JSON.
func describeRaw(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
