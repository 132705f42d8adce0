package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// AnswerValue is the normalized form of an answer, canonical or submitted.
// Answers travel as free-form JSON (a string, a number, a bool, or an array
// of those); anything unrecognized coerces the same way a loosely typed
// client would stringify it, so grading degrades to a zero score instead of
// failing. The raw JSON is retained for audit output.
type AnswerValue struct {
	scalar string
	list   []string
	isList bool
	raw    json.RawMessage
}

// DecodeAnswerValue normalizes one JSON value.
func DecodeAnswerValue(raw []byte) AnswerValue {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return AnswerValue{}
	}

	keep := json.RawMessage(append([]byte(nil), trimmed...))

	var elems []json.RawMessage
	if trimmed[0] == '[' && json.Unmarshal(trimmed, &elems) == nil {
		items := make([]string, 0, len(elems))
		for _, el := range elems {
			items = append(items, coerceScalar(el))
		}
		return AnswerValue{list: items, isList: true, raw: keep}
	}

	return AnswerValue{scalar: coerceScalar(trimmed), raw: keep}
}

// DecodeAnswerMap normalizes a {questionID: answer} JSON object. A nil map is
// returned for anything that is not an object.
func DecodeAnswerMap(raw []byte) map[string]AnswerValue {
	var byID map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil
	}
	decoded := make(map[string]AnswerValue, len(byID))
	for id, value := range byID {
		decoded[id] = DecodeAnswerValue(value)
	}
	return decoded
}

func coerceScalar(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return strconv.FormatBool(b)
	}
	return string(bytes.TrimSpace(raw))
}

// Empty reports whether no usable answer was given: absent, null, or an
// empty string. An empty array is not Empty; it grades as zero through the
// normal set rules.
func (v AnswerValue) Empty() bool {
	return !v.isList && v.scalar == ""
}

// Scalar flattens the value to a single string, joining list elements the
// way a stringified array would read.
func (v AnswerValue) Scalar() string {
	if v.isList {
		out := ""
		for i, item := range v.list {
			if i > 0 {
				out += ","
			}
			out += item
		}
		return out
	}
	return v.scalar
}

// List returns the value as a set of strings. Non-array values yield nil,
// which set-based grading treats as an empty selection.
func (v AnswerValue) List() []string {
	if !v.isList {
		return nil
	}
	return v.list
}

func (v AnswerValue) IsList() bool { return v.isList }

// MarshalJSON re-emits the original submitted JSON when present so review
// payloads show exactly what the participant sent.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	if v.isList {
		return json.Marshal(v.list)
	}
	if v.scalar == "" {
		return []byte("null"), nil
	}
	return json.Marshal(v.scalar)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	*v = DecodeAnswerValue(data)
	return nil
}

// AnswerList builds a canonical multi-choice answer value.
func AnswerList(items []string) AnswerValue {
	return AnswerValue{list: items, isList: true}
}

// AnswerText builds a canonical single-valued answer.
func AnswerText(s string) AnswerValue {
	return AnswerValue{scalar: s}
}
