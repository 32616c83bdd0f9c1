package services

import "testing"

func TestVersionComparator_CompareVersions(t *testing.T) {
	vc := NewVersionComparator()

	tests := []struct {
		name     string
		v1       string
		v2       string
		expected int
	}{
		{"equal_versions", "v1", "v1", 0},
		{"numeric_ordering", "v9", "v10", -1},
		{"dotted_versions", "1.10", "1.9", 1},
		{"case_insensitive_prefix", "V2", "v1", 1},
		{"longer_is_newer", "1.0", "1.0.1", -1},
		{"leading_zeros_tie_break", "v010", "v10", -1},
		{"plain_text_fallback", "alpha", "beta", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := vc.CompareVersions(tt.v1, tt.v2)
			if result != tt.expected {
				t.Errorf("CompareVersions(%s, %s) = %d, want %d", tt.v1, tt.v2, result, tt.expected)
			}
		})
	}
}
