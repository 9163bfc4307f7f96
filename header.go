// Package v2f assembles the quantizer, decorrelator, and forest stages into
// a symmetric streaming codec: a header file describes one codec instance,
// and a sequence of enveloped blocks carries the compressed payload.
package v2f

import (
	"encoding/binary"
	"io"

	"github.com/gici-uab/v2f-codec-sub000/decorr"
	"github.com/gici-uab/v2f-codec-sub000/forest"
	"github.com/gici-uab/v2f-codec-sub000/quant"
	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Descriptor is the codec-definition file contents: the quantizer and
// decorrelator configuration, and either an inline forest (ForestID == 0) or
// a reference to one maintained outside this module.
type Descriptor struct {
	QuantizerMode     quant.Mode
	QuantizerStepSize int
	DecorrelatorMode  decorr.Mode
	MaxSampleValue    int
	ForestID          uint32
	Forest            *forest.Forest // nil unless ForestID == 0
}

// ReadDescriptor parses a codec descriptor and its inline forest from r.
func ReadDescriptor(r io.Reader) (*Descriptor, error) {
	const op = "v2f.ReadDescriptor"

	var quantizerMode uint8
	if err := binary.Read(r, binary.BigEndian, &quantizerMode); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	if quantizerMode > 1 {
		return nil, verr.New(op, verr.KindCorruptedData, "quantizer_mode out of range; expected 0 or 1, got %d", quantizerMode)
	}

	var stepSize uint32
	if err := binary.Read(r, binary.BigEndian, &stepSize); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	if stepSize < 1 || stepSize > 255 {
		return nil, verr.New(op, verr.KindCorruptedData, "quantizer_step_size out of range; expected [1,255], got %d", stepSize)
	}

	var decorrelatorMode uint16
	if err := binary.Read(r, binary.BigEndian, &decorrelatorMode); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	if decorrelatorMode > uint16(decorr.ModeFGIJ) {
		return nil, verr.New(op, verr.KindCorruptedData, "decorrelator_mode out of range; expected [0,%d], got %d", decorr.ModeFGIJ, decorrelatorMode)
	}

	var maxSampleValue uint32
	if err := binary.Read(r, binary.BigEndian, &maxSampleValue); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	if maxSampleValue < 1 || maxSampleValue > 65535 {
		return nil, verr.New(op, verr.KindCorruptedData, "max_sample_value out of range; expected [1,65535], got %d", maxSampleValue)
	}

	var forestID uint32
	if err := binary.Read(r, binary.BigEndian, &forestID); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}

	d := &Descriptor{
		QuantizerMode:     quant.Mode(quantizerMode),
		QuantizerStepSize: int(stepSize),
		DecorrelatorMode:  decorr.Mode(decorrelatorMode),
		MaxSampleValue:    int(maxSampleValue),
		ForestID:          forestID,
	}
	if forestID != 0 {
		return nil, verr.New(op, verr.KindNotImplemented, "forest_id %d not supported; only an inline forest (forest_id=0) is implemented", forestID)
	}
	f, err := forest.Read(r)
	if err != nil {
		return nil, err
	}
	d.Forest = f
	return d, nil
}

// WriteDescriptor serializes d in the layout ReadDescriptor expects.
func WriteDescriptor(w io.Writer, d *Descriptor) error {
	const op = "v2f.WriteDescriptor"
	if d.ForestID != 0 {
		return verr.New(op, verr.KindNotImplemented, "forest_id %d not supported; only an inline forest (forest_id=0) is implemented", d.ForestID)
	}
	if err := binary.Write(w, binary.BigEndian, uint8(d.QuantizerMode)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(d.QuantizerStepSize)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(d.DecorrelatorMode)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(d.MaxSampleValue)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, d.ForestID); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if d.Forest == nil {
		return verr.New(op, verr.KindInvalidParameter, "descriptor with forest_id=0 carries no forest")
	}
	return d.Forest.Write(w)
}
