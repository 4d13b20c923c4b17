package formatting_test

import (
	"testing"

	"github.com/dhg-platform/taxon/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	const (
		kb = int64(1024)
		mb = kb * 1024
		gb = mb * 1024
	)

	valid := []struct {
		name  string
		input string
		want  int64
	}{
		{"bare number is bytes", "2048", 2048},
		{"explicit bytes", "256B", 256},
		{"kilobytes", "4KB", 4 * kb},
		{"megabytes", "50MB", 50 * mb},
		{"gigabytes", "2GB", 2 * gb},
		{"terabytes", "1TB", gb * 1024},
		{"lowercase unit", "10mb", 10 * mb},
		{"mixed case unit", "5Gb", 5 * gb},
		{"space before unit", "100 MB", 100 * mb},
		{"surrounding whitespace", "  50MB  ", 50 * mb},
		{"fractional value", "1.5KB", kb + 512},
		{"zero", "0", 0},
	}

	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if err != nil {
				t.Fatalf("ParseBytes(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}

	invalid := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"unknown unit", "50XX"},
		{"unit without number", "MB"},
		{"negative value", "-5MB"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := formatting.ParseBytes(tt.input); err == nil {
				t.Errorf("ParseBytes(%q) should have failed", tt.input)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name      string
		n         int64
		precision int
		want      string
	}{
		{"zero", 0, 2, "0 B"},
		{"small byte count", 500, 0, "500 B"},
		{"exact kilobyte", 1024, 0, "1 KB"},
		{"exact megabyte", 1024 * 1024, 0, "1 MB"},
		{"upload limit", 50 * 1024 * 1024, 0, "50 MB"},
		{"fractional with precision", 1536 * 1024, 1, "1.5 MB"},
		{"negative precision clamped", 1024, -3, "1 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatting.FormatBytes(tt.n, tt.precision)
			if got != tt.want {
				t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
			}
		})
	}
}
