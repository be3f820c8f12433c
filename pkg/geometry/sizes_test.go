package geometry

import (
	"math"
	"testing"
)

func TestAdjustedSizes(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	cases := []struct {
		name          string
		ratio         float64
		width, height float64
		mode          Mode
		want          Size
	}{
		{"both valid exact ratio", 2, 200, 100, None, Size{200, 100}},
		{"contain square box", 2, 100, 100, Contain, Size{100, 50}},
		{"cover square box", 2, 100, 100, Cover, Size{200, 100}},
		{"none behaves like contain", 2, 100, 100, None, Size{100, 50}},
		{"contain tall ratio", 0.5, 100, 100, Contain, Size{50, 100}},
		{"cover tall ratio", 0.5, 100, 100, Cover, Size{100, 200}},
		{"width only", 2, 200, nan, None, Size{200, 100}},
		{"height only", 2, 0, 100, None, Size{200, 100}},
		{"negative width ignored", 2, -10, 100, Contain, Size{200, 100}},
		{"infinite height ignored", 2, 200, inf, Contain, Size{200, 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AdjustedSizes(tc.ratio, tc.width, tc.height, tc.mode)
			if got != tc.want {
				t.Fatalf("AdjustedSizes(%v, %v, %v, %s) = %+v, want %+v",
					tc.ratio, tc.width, tc.height, tc.mode, got, tc.want)
			}
		})
	}
}

func TestAdjustedSizesNeitherValid(t *testing.T) {
	got := AdjustedSizes(2, math.Inf(1), math.Inf(1), Contain)
	if !math.IsInf(got.Width, 1) || !math.IsInf(got.Height, 1) {
		t.Fatalf("expected pass-through of infinite bounds, got %+v", got)
	}

	got = AdjustedSizes(2, 0, -1, Cover)
	if got.Width != 0 || got.Height != -1 {
		t.Fatalf("expected pass-through of invalid values, got %+v", got)
	}
}

func TestIsPositive(t *testing.T) {
	for _, v := range []float64{1, 0.5, 100} {
		if !IsPositive(v) {
			t.Errorf("IsPositive(%v) = false", v)
		}
	}
	for _, v := range []float64{0, -1, -0.5, math.Inf(1), math.Inf(-1), math.NaN()} {
		if IsPositive(v) {
			t.Errorf("IsPositive(%v) = true", v)
		}
	}
}

func TestNormalizeDecimal(t *testing.T) {
	if got := NormalizeDecimal(1.5); got != 1.5 {
		t.Fatalf("NormalizeDecimal(1.5) = %v", got)
	}
	if got := NormalizeDecimal(100); got != 100 {
		t.Fatalf("NormalizeDecimal(100) = %v", got)
	}
	if got := NormalizeDecimal(0.1 + 0.2); got != 0.3 {
		t.Fatalf("NormalizeDecimal(0.1+0.2) = %v, want 0.3", got)
	}

	noisy := math.Nextafter(100.3, 200)
	if got := NormalizeDecimal(noisy); got != 100.3 {
		t.Fatalf("NormalizeDecimal(%v) = %v, want 100.3", noisy, got)
	}
	if got := math.Floor(NormalizeDecimal(noisy)); got != 100 {
		t.Fatalf("floor after normalize = %v, want 100", got)
	}

	under := math.Nextafter(100, 0)
	if got := math.Floor(NormalizeDecimal(under)); got != 100 {
		t.Fatalf("floor(normalize(%v)) = %v, want 100", under, got)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": None, "none": None, "contain": Contain, "cover": Cover} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("fill"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
