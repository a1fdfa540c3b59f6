package record

import "testing"

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "10.1000/xyz123", "10.1000/xyz123"},
		{"uppercase", "10.1000/XYZ123", "10.1000/xyz123"},
		{"https prefix", "https://doi.org/10.1000/xyz123", "10.1000/xyz123"},
		{"http prefix", "http://doi.org/10.1000/xyz123", "10.1000/xyz123"},
		{"uppercase prefix", "HTTPS://DOI.ORG/10.1000/A", "10.1000/a"},
		{"surrounding whitespace", "  10.1000/xyz123 \n", "10.1000/xyz123"},
		{"prefix and whitespace", " https://doi.org/10.1000/A ", "10.1000/a"},
		{"doubled prefix", "https://doi.org/https://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"mixed stacked prefixes", "https://doi.org/http://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"prefix not at start kept", "see https://doi.org/10.1/x", "see https://doi.org/10.1/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDOI(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDOI_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"10.1000/xyz123",
		"https://doi.org/10.1000/XYZ",
		"HTTP://DOI.ORG/10.1234/ABC ",
		"https://doi.org/https://doi.org/10.1000/xyz",
		"  10.5555/weird doi with spaces  ",
	}

	for _, in := range inputs {
		once := NormalizeDOI(in)
		twice := NormalizeDOI(once)
		if once != twice {
			t.Errorf("NormalizeDOI not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"http://x.org/paper", "http://x.org/paper"},
		{"HTTP://X.org/Paper ", "http://x.org/paper"},
		{"  https://Example.COM/A\t", "https://example.com/a"},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
