package decorr

import (
	"reflect"
	"testing"

	"github.com/gici-uab/v2f-codec-sub000/verr"
)

func TestLosslessRoundTrip(t *testing.T) {
	golden := []struct {
		mode          Mode
		samplesPerRow int
		buf           []int
	}{
		{mode: ModeNone, samplesPerRow: 0, buf: []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{mode: ModeLeft, samplesPerRow: 0, buf: []int{16, 18, 20, 22, 24}},
		{mode: ModeLeft, samplesPerRow: 4, buf: []int{0, 50, 100, 150, 200, 250, 10, 5}},
		{mode: ModeTwoLeft, samplesPerRow: 0, buf: []int{16, 18, 20, 22, 24}},
		{mode: ModeJPEGLS, samplesPerRow: 4, buf: []int{16, 18, 20, 22, 24, 26, 28, 30}},
		{mode: ModeFGIJ, samplesPerRow: 4, buf: []int{16, 18, 20, 22, 24, 26, 28, 30, 1, 2, 3, 4}},
		{mode: ModeFGIJ, samplesPerRow: 3, buf: []int{255, 0, 255, 0, 255, 0, 255, 0, 255}},
	}
	for _, g := range golden {
		d, err := New(g.mode, 255, g.samplesPerRow)
		if err != nil {
			t.Fatalf("New(mode=%v): unexpected error: %v", g.mode, err)
		}
		want := append([]int(nil), g.buf...)
		got := append([]int(nil), g.buf...)
		if err := d.Apply(got); err != nil {
			t.Fatalf("Apply(mode=%v): unexpected error: %v", g.mode, err)
		}
		if err := d.Invert(got); err != nil {
			t.Fatalf("Invert(mode=%v): unexpected error: %v", g.mode, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("mode=%v: Invert(Apply(buf)) = %v, want %v", g.mode, got, want)
		}
	}
}

func TestParseModeRoundTrip(t *testing.T) {
	for _, mode := range []Mode{ModeNone, ModeLeft, ModeTwoLeft, ModeJPEGLS, ModeFGIJ} {
		got, err := ParseMode(mode.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): unexpected error: %v", mode, err)
		}
		if got != mode {
			t.Errorf("ParseMode(%q) = %v, want %v", mode, got, mode)
		}
	}
	if _, err := ParseMode("bogus"); !verr.Is(err, verr.KindInvalidParameter) {
		t.Errorf("ParseMode(bogus): err = %v, want KindInvalidParameter", err)
	}
}

func TestLeftPredictorScenario(t *testing.T) {
	// spec.md §8, scenario 2.
	d, err := New(ModeLeft, 255, 0)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	buf := []int{0x10, 0x12, 0x14, 0x16, 0x18}
	want := []int{0x10, 0x04, 0x04, 0x04, 0x04}
	if err := d.Apply(buf); err != nil {
		t.Fatalf("Apply: unexpected error: %v", err)
	}
	if !reflect.DeepEqual(buf, want) {
		t.Fatalf("Apply = %v, want %v", buf, want)
	}
}

func TestJPEGLSFirstRowPredictsWest(t *testing.T) {
	// spec.md §8, scenario 4.
	_, err := New(ModeJPEGLS, 255, 4)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	src := []int{0x10, 0x12, 0x14, 0x16, 0x18, 0x1A, 0x1C, 0x1E}
	wantPreds := []int{0, 0x10, 0x12, 0x14, 0x10, 0, 0, 0}
	for i := 1; i < 4; i++ {
		got := predictJPEGLS(src, i, 4)
		if got != wantPreds[i] {
			t.Errorf("predictJPEGLS(i=%d) = %#x, want %#x", i, got, wantPreds[i])
		}
	}
	if got := predictJPEGLS(src, 4, 4); got != 0x10 {
		t.Errorf("predictJPEGLS(i=4, second-row first-column) = %#x, want North=0x10", got)
	}
}

func TestRasterModeRequiresSamplesPerRow(t *testing.T) {
	d, err := New(ModeJPEGLS, 255, 0)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	if err := d.Apply([]int{1, 2, 3, 4}); !verr.Is(err, verr.KindInvalidParameter) {
		t.Fatalf("Apply with samples_per_row=0: err = %v, want KindInvalidParameter", err)
	}
}

func TestForwardCorruptionOnOutOfRangeSample(t *testing.T) {
	d, err := New(ModeLeft, 255, 0)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	if err := d.Apply([]int{1, 2, 300}); !verr.Is(err, verr.KindCorruptedData) {
		t.Fatalf("Apply with out-of-range sample: err = %v, want KindCorruptedData", err)
	}
}
