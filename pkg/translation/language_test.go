package translation

import "testing"

func TestNormalizer(t *testing.T) {
	n := NewNormalizer([]string{"sv"})

	tests := []struct {
		code string
		want string
	}{
		{"sv", "sv"},
		{"sv-SE", "sv"},
		{"sv_FI", "sv"},
		{"SV", "sv"},
		{"en", "en"},
		{"en-GB", "en"},
		{"fr", "fr"},
		{"zh-CN", "zh-CN"},
		{"", "en"},
		{"  ", "en"},
		{"svx-not-a-tag!", "sv"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := n.Normalize(tt.code); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}
