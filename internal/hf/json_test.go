package hf

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "bare object",
			in:   `{"operation":"create"}`,
			want: map[string]any{"operation": "create"},
		},
		{
			name: "wrapped in prose",
			in:   "Sure! Here is the JSON:\n{\"operation\":\"update\"}\nHope that helps.",
			want: map[string]any{"operation": "update"},
		},
		{
			name: "code fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "trailing commas repaired",
			in:   `{"fields": {"priority": "high",}, "tags": ["a", "b",],}`,
			want: map[string]any{},
		},
		{
			name: "no object",
			in:   "cannot help with that",
			want: map[string]any{},
		},
		{
			name: "empty",
			in:   "",
			want: map[string]any{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractJSON(tc.in)
			if got == nil {
				t.Fatal("Expected non-nil map")
			}
			if tc.name == "trailing commas repaired" {
				// Shape check only: repair must make it decodable.
				if _, ok := got["fields"]; !ok {
					t.Errorf("Expected fields key after repair, got %v", got)
				}
				return
			}
			if len(got) != len(tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, got)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("Key %s: expected %v, got %v", k, v, got[k])
				}
			}
		})
	}
}
