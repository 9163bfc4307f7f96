// Package quant implements the uniform scalar quantizer used as the first
// stage of the codec pipeline.
package quant

import "github.com/gici-uab/v2f-codec-sub000/verr"

// Mode selects the quantization behavior.
type Mode uint8

// Quantizer modes.
const (
	// ModeNone performs no quantization; StepSize must be 1.
	ModeNone Mode = iota
	// ModeUniform divides every sample by StepSize.
	ModeUniform
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeUniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// ParseMode parses a quantizer mode name as accepted by the -q CLI flag.
func ParseMode(s string) (Mode, error) {
	const op = "quant.ParseMode"
	switch s {
	case "none":
		return ModeNone, nil
	case "uniform":
		return ModeUniform, nil
	default:
		return 0, verr.New(op, verr.KindInvalidParameter, "unknown quantizer mode %q; expected none or uniform", s)
	}
}

// Quantizer uniformly quantizes and dequantizes samples in place.
//
// Quantizer is immutable after New returns, except that a driver may
// construct a new Quantizer with overridden Mode/StepSize before use; there
// is no in-place mutation API.
type Quantizer struct {
	Mode           Mode
	StepSize       int
	MaxSampleValue int
}

// New validates and returns a Quantizer. The only failure mode is an
// invalid parameter; Quantize and Dequantize over a valid Quantizer never
// fail.
func New(mode Mode, stepSize, maxSampleValue int) (*Quantizer, error) {
	const op = "quant.New"
	if maxSampleValue < 1 || maxSampleValue > 65535 {
		return nil, verr.New(op, verr.KindInvalidParameter, "max sample value out of range; expected [1,65535], got %d", maxSampleValue)
	}
	if stepSize < 1 || stepSize > 255 {
		return nil, verr.New(op, verr.KindInvalidParameter, "step size out of range; expected [1,255], got %d", stepSize)
	}
	if mode == ModeNone && stepSize != 1 {
		return nil, verr.New(op, verr.KindInvalidParameter, "mode none requires step size 1, got %d", stepSize)
	}
	switch mode {
	case ModeNone, ModeUniform:
	default:
		return nil, verr.New(op, verr.KindInvalidParameter, "unknown quantizer mode %d", mode)
	}
	return &Quantizer{Mode: mode, StepSize: stepSize, MaxSampleValue: maxSampleValue}, nil
}

// shift reports the power-of-two shift amount for StepSize, and whether
// StepSize is such a power of two.
func shift(step int) (uint, bool) {
	switch step {
	case 2:
		return 1, true
	case 4:
		return 2, true
	case 8:
		return 3, true
	}
	return 0, false
}

// Quantize quantizes samples in place.
func (q *Quantizer) Quantize(samples []int) {
	if q.Mode == ModeNone || q.StepSize == 1 {
		return
	}
	if n, ok := shift(q.StepSize); ok {
		for i, s := range samples {
			samples[i] = s >> n
		}
		return
	}
	for i, s := range samples {
		samples[i] = s / q.StepSize
	}
}

// Dequantize dequantizes samples in place, reconstructing at the midpoint of
// each bin and clamping to MaxSampleValue to cover a possibly incomplete
// final bin.
func (q *Quantizer) Dequantize(samples []int) {
	if q.Mode == ModeNone || q.StepSize == 1 {
		return
	}
	half := q.StepSize / 2
	for i, s := range samples {
		r := s*q.StepSize + half
		if r > q.MaxSampleValue {
			r = q.MaxSampleValue
		}
		samples[i] = r
	}
}
