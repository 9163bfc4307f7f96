// Package decorr implements the predictive decorrelation stage: five
// neighbor-based predictors over a 2D raster, each paired with the
// prediction-residual bijection from internal/residual so that encoding
// never leaves the sample's dynamic range.
package decorr

import (
	"github.com/gici-uab/v2f-codec-sub000/internal/residual"
	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Mode selects the predictor.
type Mode uint8

// Decorrelator modes.
const (
	ModeNone Mode = iota
	ModeLeft
	ModeTwoLeft
	ModeJPEGLS
	ModeFGIJ
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeLeft:
		return "left"
	case ModeTwoLeft:
		return "2-left"
	case ModeJPEGLS:
		return "jpeg-ls"
	case ModeFGIJ:
		return "fgij"
	default:
		return "unknown"
	}
}

// ParseMode parses a decorrelator mode name as accepted by the -d CLI flag.
func ParseMode(s string) (Mode, error) {
	const op = "decorr.ParseMode"
	switch s {
	case "none":
		return ModeNone, nil
	case "left":
		return ModeLeft, nil
	case "2-left":
		return ModeTwoLeft, nil
	case "jpeg-ls":
		return ModeJPEGLS, nil
	case "fgij":
		return ModeFGIJ, nil
	default:
		return 0, verr.New(op, verr.KindInvalidParameter, "unknown decorrelator mode %q", s)
	}
}

// needsRaster reports whether m requires row-major 2D addressing.
func (m Mode) needsRaster() bool {
	return m == ModeJPEGLS || m == ModeFGIJ
}

// Decorrelator applies or inverts one of the five predictors over a flat
// buffer interpreted as a row-major raster of width SamplesPerRow (or a
// single row if SamplesPerRow is 0, which is only legal for ModeLeft and
// ModeTwoLeft — see the pinned open question in SPEC_FULL.md §4.4).
type Decorrelator struct {
	Mode           Mode
	MaxSampleValue int
	SamplesPerRow  int
}

// New validates and returns a Decorrelator. SamplesPerRow is validated
// against the buffer length lazily, in Apply/Invert, since the spec
// invariant is stated in terms of the block length.
func New(mode Mode, maxSampleValue, samplesPerRow int) (*Decorrelator, error) {
	const op = "decorr.New"
	switch mode {
	case ModeNone, ModeLeft, ModeTwoLeft, ModeJPEGLS, ModeFGIJ:
	default:
		return nil, verr.New(op, verr.KindInvalidParameter, "unknown decorrelator mode %d", mode)
	}
	if maxSampleValue < 1 || maxSampleValue > 65535 {
		return nil, verr.New(op, verr.KindInvalidParameter, "max sample value out of range; expected [1,65535], got %d", maxSampleValue)
	}
	if samplesPerRow < 0 {
		return nil, verr.New(op, verr.KindInvalidParameter, "negative samples per row: %d", samplesPerRow)
	}
	return &Decorrelator{Mode: mode, MaxSampleValue: maxSampleValue, SamplesPerRow: samplesPerRow}, nil
}

// width validates buf against d's raster requirements and returns the
// effective row width (equal to len(buf) when SamplesPerRow is 0 and the
// mode permits that).
func (d *Decorrelator) width(op string, n int) (int, error) {
	if d.Mode.needsRaster() {
		if d.SamplesPerRow <= 0 {
			return 0, verr.New(op, verr.KindInvalidParameter, "%v requires samples_per_row > 0", d.Mode)
		}
		if n%d.SamplesPerRow != 0 {
			return 0, verr.New(op, verr.KindInvalidParameter, "block length %d is not a multiple of samples_per_row %d", n, d.SamplesPerRow)
		}
		return d.SamplesPerRow, nil
	}
	if d.SamplesPerRow == 0 {
		return n, nil
	}
	if n%d.SamplesPerRow != 0 {
		return 0, verr.New(op, verr.KindInvalidParameter, "block length %d is not a multiple of samples_per_row %d", n, d.SamplesPerRow)
	}
	return d.SamplesPerRow, nil
}

// Apply performs forward decorrelation of buf in place: every sample is
// replaced by its residual code relative to its prediction. Predictions are
// always computed from the original (pre-transform) sample values.
func (d *Decorrelator) Apply(buf []int) error {
	const op = "decorr.Decorrelator.Apply"
	if d.Mode == ModeNone {
		return nil
	}
	w, err := d.width(op, len(buf))
	if err != nil {
		return err
	}
	src := append([]int(nil), buf...)
	M := d.MaxSampleValue
	predict := predictorFor(d.Mode)
	for i, s := range src {
		if s < 0 || s > M {
			return verr.New(op, verr.KindCorruptedData, "sample %d at position %d exceeds max sample value %d", s, i, M)
		}
		p := predict(src, i, w)
		buf[i] = residual.Map(s, p, M)
	}
	return nil
}

// Invert performs inverse decorrelation of buf in place: every residual code
// is replaced by the original sample it encoded. Predictions are computed
// from already-reconstructed neighbors, available because reconstruction
// proceeds in the same order the forward transform predicted in.
func (d *Decorrelator) Invert(buf []int) error {
	const op = "decorr.Decorrelator.Invert"
	if d.Mode == ModeNone {
		return nil
	}
	w, err := d.width(op, len(buf))
	if err != nil {
		return err
	}
	M := d.MaxSampleValue
	predict := predictorFor(d.Mode)
	for i, coded := range buf {
		p := predict(buf, i, w)
		buf[i] = residual.Unmap(coded, p, M)
	}
	return nil
}

// predictorFn computes the prediction for position i of a row-major raster
// of width w, reading already-available samples from buf (either the
// untouched original, on the forward path, or the in-place reconstruction,
// on the inverse path).
type predictorFn func(buf []int, i, w int) int

func predictorFor(mode Mode) predictorFn {
	switch mode {
	case ModeLeft:
		return predictLeft
	case ModeTwoLeft:
		return predictTwoLeft
	case ModeJPEGLS:
		return predictJPEGLS
	case ModeFGIJ:
		return predictFGIJ
	default:
		return func(buf []int, i, w int) int { return 0 }
	}
}

func predictLeft(buf []int, i, w int) int {
	if i == 0 {
		return 0
	}
	return buf[i-1]
}

func predictTwoLeft(buf []int, i, w int) int {
	var a, b int
	if i >= 1 {
		a = buf[i-1]
	}
	if i >= 2 {
		b = buf[i-2]
	}
	return (a + b + 1) >> 1
}
