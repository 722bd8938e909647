package analyzer

import (
	"github.com/tidwall/gjson"

	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

var requiredStrings = []string{"type", "message", "replacement"}

// Decode parses an analyzer response body of the form
//
//	{"suggestions": [{"type", "message", "replacement", "start", "end"}]}
//
// Shape violations yield a *ContractError. Span bounds are not checked here;
// that happens when the batch is published against a buffer.
func Decode(body []byte) ([]suggestion.Raw, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ContractError{Reason: "body is not valid JSON", Index: -1}
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, &ContractError{Reason: "body is not an object", Index: -1}
	}

	list := root.Get("suggestions")
	if !list.IsArray() {
		return nil, &ContractError{Reason: "suggestions is not an array", Index: -1}
	}

	entries := list.Array()
	out := make([]suggestion.Raw, 0, len(entries))
	for i, e := range entries {
		raw, err := decodeEntry(i, e)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func decodeEntry(i int, e gjson.Result) (suggestion.Raw, error) {
	if !e.IsObject() {
		return suggestion.Raw{}, &ContractError{Reason: "entry is not an object", Index: i}
	}

	for _, key := range requiredStrings {
		if v := e.Get(key); v.Type != gjson.String {
			return suggestion.Raw{}, &ContractError{Reason: "missing string field " + key, Index: i}
		}
	}

	start, end := e.Get("start"), e.Get("end")
	if !isInteger(start) || !isInteger(end) {
		return suggestion.Raw{}, &ContractError{Reason: "start and end must be integers", Index: i}
	}

	return suggestion.Raw{
		Type:        e.Get("type").String(),
		Message:     e.Get("message").String(),
		Replacement: e.Get("replacement").String(),
		Start:       int(start.Int()),
		End:         int(end.Int()),
	}, nil
}

func isInteger(v gjson.Result) bool {
	return v.Type == gjson.Number && v.Num == float64(int64(v.Num))
}
