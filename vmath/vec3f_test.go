package vmath

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestV3FNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3F
		want Vec3F
	}{
		{"axis", V3F(0, 0, -7), V3F(0, 0, -1)},
		{"diagonal", V3F(3, 4, 0), V3F(0.6, 0.8, 0)},
		{"zero", Vec3F{}, Vec3F{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := V3FNormalize(tt.in)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("V3FNormalize(%v) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestV3FClampMag(t *testing.T) {
	short := V3F(1, 2, 2)
	if got := V3FClampMag(short, 15); got != short {
		t.Errorf("short vector changed: %v", got)
	}

	long := V3F(30, 0, 40)
	got := V3FClampMag(long, 15)
	if mag := V3FMag(got); math.Abs(mag-15) > 1e-9 {
		t.Errorf("clamped magnitude = %v, want 15", mag)
	}
	if diff := cmp.Diff(V3FNormalize(long), V3FNormalize(got), approx); diff != "" {
		t.Errorf("direction changed (-want +got):\n%s", diff)
	}
}

func TestV3FDistSq(t *testing.T) {
	if got := V3FDistSq(V3F(1, 1, 1), V3F(2, 3, 4)); got != 14 {
		t.Errorf("V3FDistSq = %v, want 14", got)
	}
}

func TestV3FIsFinite(t *testing.T) {
	if !V3FIsFinite(V3F(1, -2, 3)) {
		t.Error("finite vector reported non-finite")
	}
	if V3FIsFinite(V3F(math.NaN(), 0, 0)) {
		t.Error("NaN not detected")
	}
	if V3FIsFinite(V3F(0, math.Inf(-1), 0)) {
		t.Error("Inf not detected")
	}
}
