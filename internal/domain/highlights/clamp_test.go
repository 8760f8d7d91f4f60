package highlights

import (
	"testing"

	"github.com/forPelevin/ytclip/internal/types"
)

func TestClampWindow(t *testing.T) {
	tests := []struct {
		name  string
		in    types.SelectionWindow
		total float64
		want  types.SelectionWindow
	}{
		{"unknown total", types.SelectionWindow{StartSeconds: 500, DurationSeconds: 25}, 0, types.SelectionWindow{StartSeconds: 500, DurationSeconds: 25}},
		{"fits", types.SelectionWindow{StartSeconds: 10, DurationSeconds: 25}, 120, types.SelectionWindow{StartSeconds: 10, DurationSeconds: 25}},
		{"ends exactly at total", types.SelectionWindow{StartSeconds: 95, DurationSeconds: 25}, 120, types.SelectionWindow{StartSeconds: 95, DurationSeconds: 25}},
		{"overruns end", types.SelectionWindow{StartSeconds: 110, DurationSeconds: 25}, 120.7, types.SelectionWindow{StartSeconds: 95, DurationSeconds: 25}},
		{"source shorter than window", types.SelectionWindow{StartSeconds: 3, DurationSeconds: 25}, 12.4, types.SelectionWindow{StartSeconds: 0, DurationSeconds: 12}},
		{"sub-second source", types.SelectionWindow{StartSeconds: 0, DurationSeconds: 25}, 0.4, types.SelectionWindow{StartSeconds: 0, DurationSeconds: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampWindow(tt.in, tt.total); got != tt.want {
				t.Fatalf("ClampWindow(%+v, %v) = %+v, want %+v", tt.in, tt.total, got, tt.want)
			}
		})
	}
}
