package result

import "testing"

func TestStripSegmentSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"f6ee1f3a-4b9b_0", "f6ee1f3a-4b9b"},
		{"f6ee1f3a-4b9b_17", "f6ee1f3a-4b9b"},
		{"plain-id", "plain-id"},
		{"name_with_suffix_2", "name_with_suffix"},
		{"trailing_", "trailing_"},
		{"not_numeric_x1", "not_numeric_x1"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := StripSegmentSuffix(tc.in); got != tc.want {
			t.Errorf("StripSegmentSuffix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
