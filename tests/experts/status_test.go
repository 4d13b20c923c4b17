package experts_test

import (
	"fmt"
	"testing"

	"github.com/dhg-platform/taxon/internal/experts"
)

func TestStatusAdvances(t *testing.T) {
	tests := []struct {
		current string
		next    string
		want    bool
	}{
		{experts.StatusUnprocessed, experts.StatusNeedsClassification, true},
		{experts.StatusUnprocessed, experts.StatusProcessed, true},
		{experts.StatusUnprocessed, experts.StatusSkipped, true},
		{experts.StatusNeedsClassification, experts.StatusProcessed, true},

		// Status never moves backward.
		{experts.StatusProcessed, experts.StatusUnprocessed, false},
		{experts.StatusProcessed, experts.StatusNeedsClassification, false},
		{experts.StatusNeedsClassification, experts.StatusUnprocessed, false},

		// Repeated classification of the same document is a no-op.
		{experts.StatusProcessed, experts.StatusProcessed, false},
		{experts.StatusSkipped, experts.StatusSkipped, false},

		// The terminal statuses never overwrite each other.
		{experts.StatusProcessed, experts.StatusSkipped, false},
		{experts.StatusSkipped, experts.StatusProcessed, false},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%s to %s", tt.current, tt.next)
		t.Run(name, func(t *testing.T) {
			if got := experts.StatusAdvances(tt.current, tt.next); got != tt.want {
				t.Errorf("StatusAdvances(%q, %q) = %v, want %v",
					tt.current, tt.next, got, tt.want)
			}
		})
	}
}
