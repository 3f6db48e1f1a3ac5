package capture

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	samples := []int16{0, 100, -100, 32767, -32768}
	data := EncodeWAV(samples, 16000)

	wantLen := 44 + len(samples)*2
	if len(data) != wantLen {
		t.Fatalf("expected %d bytes, got %d", wantLen, len(data))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) {
		t.Fatalf("missing RIFF marker: %q", data[0:4])
	}
	if !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Fatalf("missing WAVE marker: %q", data[8:12])
	}
	if !bytes.Equal(data[12:16], []byte("fmt ")) {
		t.Fatalf("missing fmt chunk: %q", data[12:16])
	}
	if !bytes.Equal(data[36:40], []byte("data")) {
		t.Fatalf("missing data chunk: %q", data[36:40])
	}

	rate := binary.LittleEndian.Uint32(data[24:28])
	if rate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", rate)
	}
	channels := binary.LittleEndian.Uint16(data[22:24])
	if channels != 1 {
		t.Fatalf("expected mono, got %d channels", channels)
	}
	bits := binary.LittleEndian.Uint16(data[34:36])
	if bits != 16 {
		t.Fatalf("expected 16 bits per sample, got %d", bits)
	}
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(samples)*2 {
		t.Fatalf("expected data size %d, got %d", len(samples)*2, dataSize)
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	data := EncodeWAV(nil, 16000)
	if len(data) != 44 {
		t.Fatalf("empty encode should be header only, got %d bytes", len(data))
	}
	if binary.LittleEndian.Uint32(data[40:44]) != 0 {
		t.Fatalf("expected zero data size")
	}
}
