package v2f

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// MaxBlockSize is the largest number of samples a single envelope may carry.
const MaxBlockSize = 5120 * 256

// WriteEnvelope frames one compressed block: size, sample count, payload.
func WriteEnvelope(w io.Writer, payload []byte, sampleCount, bytesPerWord int) error {
	const op = "v2f.WriteEnvelope"
	if len(payload) == 0 || len(payload)%bytesPerWord != 0 {
		return verr.New(op, verr.KindInvalidParameter, "compressed_bitstream_size %d must be >0 and a multiple of bytes_per_word %d", len(payload), bytesPerWord)
	}
	if sampleCount < 1 || sampleCount > MaxBlockSize {
		return verr.New(op, verr.KindInvalidParameter, "sample_count %d out of range [1,%d]", sampleCount, MaxBlockSize)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(payload))); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(sampleCount)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if _, err := w.Write(payload); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	return nil
}

// ReadEnvelope reads one compressed block, returning its payload and sample
// count. A clean end of stream — a read for compressed_bitstream_size that
// returns zero bytes exactly on an envelope boundary — is reported as
// *verr.Error of KindUnexpectedEOF; any other misalignment is
// KindCorruptedData.
func ReadEnvelope(r io.Reader, bytesPerWord int) (payload []byte, sampleCount int, err error) {
	const op = "v2f.ReadEnvelope"

	var sizeBuf [4]byte
	n, rerr := io.ReadFull(r, sizeBuf[:])
	if rerr != nil {
		if errors.Is(rerr, io.EOF) && n == 0 {
			return nil, 0, verr.New(op, verr.KindUnexpectedEOF, "clean end of compressed stream")
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			return nil, 0, verr.New(op, verr.KindCorruptedData, "compressed stream ended mid-envelope while reading compressed_bitstream_size")
		}
		return nil, 0, verr.Wrap(op, verr.KindIO, rerr)
	}
	size := int(binary.BigEndian.Uint32(sizeBuf[:]))
	if size <= 0 || size%bytesPerWord != 0 {
		return nil, 0, verr.New(op, verr.KindCorruptedData, "compressed_bitstream_size %d invalid; must be >0 and a multiple of %d", size, bytesPerWord)
	}

	var countBuf [4]byte
	if _, rerr := io.ReadFull(r, countBuf[:]); rerr != nil {
		return nil, 0, verr.New(op, verr.KindCorruptedData, "compressed stream ended mid-envelope while reading sample_count")
	}
	sampleCount = int(binary.BigEndian.Uint32(countBuf[:]))
	if sampleCount < 1 || sampleCount > MaxBlockSize {
		return nil, 0, verr.New(op, verr.KindCorruptedData, "sample_count %d out of range [1,%d]", sampleCount, MaxBlockSize)
	}

	payload = make([]byte, size)
	if _, rerr := io.ReadFull(r, payload); rerr != nil {
		return nil, 0, verr.New(op, verr.KindCorruptedData, "compressed stream ended mid-payload; expected %d bytes", size)
	}
	return payload, sampleCount, nil
}
