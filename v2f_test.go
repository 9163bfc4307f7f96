package v2f

import (
	"bytes"
	"testing"

	"github.com/gici-uab/v2f-codec-sub000/decorr"
	"github.com/gici-uab/v2f-codec-sub000/forest"
	"github.com/gici-uab/v2f-codec-sub000/quant"
	"github.com/gici-uab/v2f-codec-sub000/verr"
)

func newIdentityCodec(t *testing.T) *Codec {
	t.Helper()
	q, err := quant.New(quant.ModeNone, 1, 255)
	if err != nil {
		t.Fatalf("quant.New: unexpected error: %v", err)
	}
	d, err := decorr.New(decorr.ModeNone, 255, 0)
	if err != nil {
		t.Fatalf("decorr.New: unexpected error: %v", err)
	}
	f, err := forest.NewMinimal(1)
	if err != nil {
		t.Fatalf("forest.NewMinimal: unexpected error: %v", err)
	}
	return &Codec{Quantizer: q, Decorrelator: d, Forest: f}
}

// TestIdentityRoundTrip covers spec.md §8 scenario 1: an identity codec over
// 1-byte samples must reproduce its input byte-for-byte (property 8.6).
func TestIdentityRoundTrip(t *testing.T) {
	c := newIdentityCodec(t)
	raw := []byte{10, 20, 30, 5, 255, 0, 128}

	var compressed bytes.Buffer
	if err := Compress(bytes.NewReader(raw), &compressed, c); err != nil {
		t.Fatalf("Compress: unexpected error: %v", err)
	}

	var decompressed bytes.Buffer
	if err := Decompress(&compressed, &decompressed, c); err != nil {
		t.Fatalf("Decompress: unexpected error: %v", err)
	}
	if !bytes.Equal(decompressed.Bytes(), raw) {
		t.Fatalf("Decompress(Compress(raw)) = % x, want % x", decompressed.Bytes(), raw)
	}
}

// TestLeftPredictorRoundTrip covers spec.md §8 scenario 2: left-predictor
// decorrelation composed with the identity entropy coder.
func TestLeftPredictorRoundTrip(t *testing.T) {
	q, err := quant.New(quant.ModeNone, 1, 255)
	if err != nil {
		t.Fatalf("quant.New: unexpected error: %v", err)
	}
	d, err := decorr.New(decorr.ModeLeft, 255, 0)
	if err != nil {
		t.Fatalf("decorr.New: unexpected error: %v", err)
	}
	f, err := forest.NewMinimal(1)
	if err != nil {
		t.Fatalf("forest.NewMinimal: unexpected error: %v", err)
	}
	c := &Codec{Quantizer: q, Decorrelator: d, Forest: f}

	raw := []byte{0x10, 0x12, 0x14, 0x16, 0x18}
	var compressed bytes.Buffer
	if err := Compress(bytes.NewReader(raw), &compressed, c); err != nil {
		t.Fatalf("Compress: unexpected error: %v", err)
	}
	var decompressed bytes.Buffer
	if err := Decompress(&compressed, &decompressed, c); err != nil {
		t.Fatalf("Decompress: unexpected error: %v", err)
	}
	if !bytes.Equal(decompressed.Bytes(), raw) {
		t.Fatalf("Decompress(Compress(raw)) = % x, want % x", decompressed.Bytes(), raw)
	}
}

// TestLossyQuantizerBound covers spec.md §8 scenario 3 and property 8.7: a
// step=4 uniform quantizer never reconstructs more than step/2+1 away from
// the original sample.
func TestLossyQuantizerBound(t *testing.T) {
	q, err := quant.New(quant.ModeUniform, 4, 255)
	if err != nil {
		t.Fatalf("quant.New: unexpected error: %v", err)
	}
	d, err := decorr.New(decorr.ModeNone, 255, 0)
	if err != nil {
		t.Fatalf("decorr.New: unexpected error: %v", err)
	}
	f, err := forest.NewMinimal(1)
	if err != nil {
		t.Fatalf("forest.NewMinimal: unexpected error: %v", err)
	}
	c := &Codec{Quantizer: q, Decorrelator: d, Forest: f}

	raw := []byte{0, 1, 4, 5, 8, 100, 255, 251}
	var compressed bytes.Buffer
	if err := Compress(bytes.NewReader(raw), &compressed, c); err != nil {
		t.Fatalf("Compress: unexpected error: %v", err)
	}
	var decompressed bytes.Buffer
	if err := Decompress(&compressed, &decompressed, c); err != nil {
		t.Fatalf("Decompress: unexpected error: %v", err)
	}
	got := decompressed.Bytes()
	if len(got) != len(raw) {
		t.Fatalf("Decompress produced %d samples, want %d", len(got), len(raw))
	}
	for i, s := range raw {
		diff := int(got[i]) - int(s)
		if diff < 0 {
			diff = -diff
		}
		if diff > 4/2+1 {
			t.Errorf("sample %d: |%d - %d| = %d exceeds bound %d", i, got[i], s, diff, 4/2+1)
		}
	}
}

// TestHeaderRoundTrip covers spec.md §8 scenario 5: a descriptor written and
// re-parsed must describe an equivalent codec.
func TestHeaderRoundTrip(t *testing.T) {
	f, err := forest.NewMinimal(2)
	if err != nil {
		t.Fatalf("forest.NewMinimal: unexpected error: %v", err)
	}
	want := &Descriptor{
		QuantizerMode:     quant.ModeUniform,
		QuantizerStepSize: 4,
		DecorrelatorMode:  decorr.ModeJPEGLS,
		MaxSampleValue:    65535,
		ForestID:          0,
		Forest:            f,
	}
	var buf bytes.Buffer
	if err := WriteDescriptor(&buf, want); err != nil {
		t.Fatalf("WriteDescriptor: unexpected error: %v", err)
	}
	got, err := ReadDescriptor(&buf)
	if err != nil {
		t.Fatalf("ReadDescriptor: unexpected error: %v", err)
	}
	if got.QuantizerMode != want.QuantizerMode ||
		got.QuantizerStepSize != want.QuantizerStepSize ||
		got.DecorrelatorMode != want.DecorrelatorMode ||
		got.MaxSampleValue != want.MaxSampleValue ||
		got.ForestID != want.ForestID {
		t.Fatalf("ReadDescriptor(WriteDescriptor(want)) = %+v, want %+v", got, want)
	}
	if got.Forest.MaxExpectedValue != want.Forest.MaxExpectedValue || len(got.Forest.Roots) != len(want.Forest.Roots) {
		t.Fatalf("forest shape mismatch after round trip: MaxExpectedValue=%d len(Roots)=%d, want %d, %d",
			got.Forest.MaxExpectedValue, len(got.Forest.Roots), want.Forest.MaxExpectedValue, len(want.Forest.Roots))
	}
}

// TestCorruptedEnvelopeRejected covers spec.md §8 scenario 6: a malformed
// envelope is rejected as corrupted data, never silently accepted or
// panicked on.
func TestCorruptedEnvelopeRejected(t *testing.T) {
	tests := []struct {
		name         string
		buf          []byte
		bytesPerWord int
	}{
		{"zero size", []byte{0, 0, 0, 0, 0, 0, 0, 1}, 1},
		{"size not multiple of bytes_per_word", []byte{0, 0, 0, 3}, 2},
		{"truncated mid-payload", []byte{0, 0, 0, 4, 0, 0, 0, 4, 1, 2}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ReadEnvelope(bytes.NewReader(tc.buf), tc.bytesPerWord)
			if !verr.Is(err, verr.KindCorruptedData) {
				t.Fatalf("ReadEnvelope(%s): err = %v, want KindCorruptedData", tc.name, err)
			}
		})
	}
}

func TestReadEnvelopeCleanEOF(t *testing.T) {
	_, _, err := ReadEnvelope(bytes.NewReader(nil), 1)
	if !verr.Is(err, verr.KindUnexpectedEOF) {
		t.Fatalf("ReadEnvelope(empty): err = %v, want KindUnexpectedEOF", err)
	}
}

func TestParseShadowRanges(t *testing.T) {
	got, err := ParseShadowRanges("0:15,100:115")
	if err != nil {
		t.Fatalf("ParseShadowRanges: unexpected error: %v", err)
	}
	want := []ShadowRange{{Start: 0, End: 15}, {Start: 100, End: 115}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ParseShadowRanges = %v, want %v", got, want)
	}

	if _, err := ParseShadowRanges("10:5"); !verr.Is(err, verr.KindInvalidParameter) {
		t.Fatalf("ParseShadowRanges(decreasing): err = %v, want KindInvalidParameter", err)
	}
	if _, err := ParseShadowRanges("0:15,10:21"); !verr.Is(err, verr.KindInvalidParameter) {
		t.Fatalf("ParseShadowRanges(overlap): err = %v, want KindInvalidParameter", err)
	}
	if _, err := ParseShadowRanges("0:14"); !verr.Is(err, verr.KindInvalidParameter) {
		t.Fatalf("ParseShadowRanges(odd span): err = %v, want KindInvalidParameter", err)
	}
}
