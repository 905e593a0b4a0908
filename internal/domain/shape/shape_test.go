package shape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList_ShapeInvariance(t *testing.T) {
	item := Record{"id": "1", "name": "srv-01"}

	tests := []struct {
		name     string
		input    any
		expected []Record
	}{
		{name: "absent", input: nil, expected: []Record{}},
		{name: "single object", input: map[string]any{"id": "1", "name": "srv-01"}, expected: []Record{item}},
		{name: "array of one", input: []any{map[string]any{"id": "1", "name": "srv-01"}}, expected: []Record{item}},
		{name: "typed array of one", input: []map[string]any{{"id": "1", "name": "srv-01"}}, expected: []Record{item}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, List(tt.input, Drop))
			assert.Equal(t, tt.expected, List(tt.input, WrapDevice))
		})
	}
}

func TestList_PreservesOrder(t *testing.T) {
	in := []any{
		map[string]any{"id": "3"},
		map[string]any{"id": "1"},
		map[string]any{"id": "2"},
	}

	out := List(in, Drop)
	assert.Equal(t, []string{"3", "1", "2"}, []string{out[0]["id"].(string), out[1]["id"].(string), out[2]["id"].(string)})
}

func TestList_Policies(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		policy   Policy
		expected []Record
	}{
		{
			name:     "drop scalars in list",
			input:    []any{"a", map[string]any{"id": "b"}, 7.0},
			policy:   Drop,
			expected: []Record{{"id": "b"}},
		},
		{
			name:   "wrap scalars in list",
			input:  []any{"a", map[string]any{"id": "b"}, 7.0},
			policy: WrapDevice,
			expected: []Record{
				{"id": "a", "name": "", "status": "unknown"},
				{"id": "b"},
				{"id": "7", "name": "", "status": "unknown"},
			},
		},
		{
			name:     "wrap bare id",
			input:    "1001",
			policy:   WrapDevice,
			expected: []Record{{"id": "1001", "name": "", "status": "unknown"}},
		},
		{
			name:     "drop bare id",
			input:    "1001",
			policy:   Drop,
			expected: []Record{},
		},
		{
			name:     "empty element is not a device",
			input:    "",
			policy:   WrapDevice,
			expected: []Record{},
		},
		{
			name:     "nested lists are dropped",
			input:    []any{[]any{map[string]any{"id": "x"}}},
			policy:   WrapDevice,
			expected: []Record{},
		},
		{
			name:     "nil entries are dropped",
			input:    []any{nil, map[string]any{"id": "x"}},
			policy:   Drop,
			expected: []Record{{"id": "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, List(tt.input, tt.policy))
		})
	}
}

func TestDig(t *testing.T) {
	payload := map[string]any{
		"result": map[string]any{
			"items": map[string]any{"client": []any{map[string]any{"clientid": "1"}}},
		},
	}

	assert.NotNil(t, Dig(payload, "result", "items", "client"))
	assert.Nil(t, Dig(payload, "result", "missing", "client"))
	assert.Nil(t, Dig("not a map", "result"))
	assert.Equal(t, payload, Dig(payload))

	clients := Items(Dig(payload, "result", "items"), "client")
	assert.Len(t, clients, 1)
}

func TestScalarAndString(t *testing.T) {
	r := Record{
		"id":       map[string]any{"#text": " 42 ", "-type": "int"},
		"count":    json.Number("12"),
		"float":    3.5,
		"flag":     true,
		"empty":    "",
		"nested":   map[string]any{"a": 1},
		"fallback": "yes",
	}

	assert.Equal(t, "42", String(r, "id"))
	assert.Equal(t, "12", String(r, "count"))
	assert.Equal(t, "3.5", String(r, "float"))
	assert.Equal(t, "true", String(r, "flag"))
	assert.Equal(t, "yes", String(r, "empty", "nested", "fallback"))
	assert.Equal(t, "", String(r, "missing"))
}

func TestInt(t *testing.T) {
	r := Record{"a": "17", "b": 4.0, "c": "x"}

	assert.Equal(t, 17, *Int(r, "a"))
	assert.Equal(t, 4, *Int(r, "b"))
	assert.Nil(t, Int(r, "c"))
	assert.Nil(t, Int(r, "missing"))
}

func TestWithout(t *testing.T) {
	r := Record{"id": "1", "name": "n", "extra": "e"}

	out := Without(r, "id", "name")

	assert.Equal(t, Record{"extra": "e"}, out)
	assert.Len(t, r, 3)
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected []Record
	}{
		{
			name:     "container with list",
			input:    map[string]any{"outage": []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}}},
			expected: []Record{{"id": "1"}, {"id": "2"}},
		},
		{
			name:     "container with single element",
			input:    map[string]any{"outage": map[string]any{"id": "1"}},
			expected: []Record{{"id": "1"}},
		},
		{
			name:     "single-key scalar record stays a record",
			input:    map[string]any{"id": "1"},
			expected: []Record{{"id": "1"}},
		},
		{
			name:     "multi-key record",
			input:    map[string]any{"id": "1", "name": "x"},
			expected: []Record{{"id": "1", "name": "x"}},
		},
		{
			name:     "absent",
			input:    nil,
			expected: []Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Unwrap(tt.input, Drop))
		})
	}
}
