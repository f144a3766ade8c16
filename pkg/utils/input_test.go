package utils

import (
	"math"
	"testing"
)

func TestNormalizePointer(t *testing.T) {
	tests := []struct {
		name   string
		x, y   int
		w, h   int
		wantX  float64
		wantY  float64
		wantOK bool
	}{
		{"Origin", 0, 0, 800, 600, 0, 0, true},
		{"Center", 400, 300, 800, 600, 50, 50, true},
		{"Bottom right", 800, 600, 800, 600, 100, 100, true},
		{"Right of viewport", 1000, 300, 800, 600, 0, 0, false},
		{"Above viewport", 400, -20, 800, 600, 0, 0, false},
		{"Zero viewport", 10, 10, 0, 600, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py, ok := NormalizePointer(tt.x, tt.y, tt.w, tt.h)
			if ok != tt.wantOK {
				t.Fatalf("NormalizePointer ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(px-tt.wantX) > 1e-9 || math.Abs(py-tt.wantY) > 1e-9 {
				t.Errorf("NormalizePointer(%d, %d) = (%.2f, %.2f), want (%.2f, %.2f)",
					tt.x, tt.y, px, py, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestDenormalizePointerRoundTrip(t *testing.T) {
	px, py, _ := NormalizePointer(200, 450, 800, 600)
	x, y := DenormalizePointer(px, py, 800, 600)
	if math.Abs(x-200) > 1e-9 || math.Abs(y-450) > 1e-9 {
		t.Errorf("Round trip mismatch: got (%.2f, %.2f)", x, y)
	}
}
