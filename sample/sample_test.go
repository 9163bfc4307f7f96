package sample

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/gici-uab/v2f-codec-sub000/verr"
)

func TestRoundTripWidth1(t *testing.T) {
	want := []int{0, 1, 2, 255, 128}
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Width1)
	if err != nil {
		t.Fatalf("NewWriter: unexpected error: %v", err)
	}
	if err := w.Write(want); err != nil {
		t.Fatalf("Write: unexpected error: %v", err)
	}

	r, err := NewReader(&buf, Width1)
	if err != nil {
		t.Fatalf("NewReader: unexpected error: %v", err)
	}
	got := make([]int, len(want))
	n, err := r.Read(got)
	if err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}
	if n != len(want) || !reflect.DeepEqual(got, want) {
		t.Fatalf("Read = %v (n=%d), want %v", got, n, want)
	}
}

func TestRoundTripWidth2BigEndian(t *testing.T) {
	want := []int{0, 1, 256, 65535, 0x1234}
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Width2)
	if err != nil {
		t.Fatalf("NewWriter: unexpected error: %v", err)
	}
	if err := w.Write(want); err != nil {
		t.Fatalf("Write: unexpected error: %v", err)
	}
	if got := buf.Bytes()[8:10]; !bytes.Equal(got, []byte{0x12, 0x34}) {
		t.Fatalf("wire bytes for 0x1234 = % x, want 12 34 (big-endian)", got)
	}

	r, err := NewReader(&buf, Width2)
	if err != nil {
		t.Fatalf("NewReader: unexpected error: %v", err)
	}
	got := make([]int, len(want))
	n, err := r.Read(got)
	if err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}
	if n != len(want) || !reflect.DeepEqual(got, want) {
		t.Fatalf("Read = %v (n=%d), want %v", got, n, want)
	}
}

func TestCleanEndOfStream(t *testing.T) {
	buf := bytes.NewReader([]byte{0x00, 0x01, 0x02})
	r, err := NewReader(buf, Width1)
	if err != nil {
		t.Fatalf("NewReader: unexpected error: %v", err)
	}
	got := make([]int, 5)
	n, err := r.Read(got)
	if n != 3 {
		t.Fatalf("Read: n = %d, want 3", n)
	}
	if !verr.Is(err, verr.KindUnexpectedEOF) {
		t.Fatalf("Read: err = %v, want KindUnexpectedEOF", err)
	}
}

func TestMidSampleCorruption(t *testing.T) {
	buf := bytes.NewReader([]byte{0x00, 0x01, 0x02})
	r, err := NewReader(buf, Width2)
	if err != nil {
		t.Fatalf("NewReader: unexpected error: %v", err)
	}
	got := make([]int, 5)
	n, err := r.Read(got)
	if n != 1 {
		t.Fatalf("Read: n = %d, want 1", n)
	}
	if !verr.Is(err, verr.KindCorruptedData) {
		t.Fatalf("Read: err = %v, want KindCorruptedData", err)
	}
}
