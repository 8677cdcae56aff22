package encoder

import (
	"encoding/binary"
	"testing"
)

func TestWAVEncoderHeader(t *testing.T) {
	samples := sineSamples(SampleRate / 4)

	enc := NewWAV()
	for i := 0; i < len(samples); i += BlockSize {
		end := i + BlockSize
		if end > len(samples) {
			end = len(samples)
		}
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			t.Fatalf("EncodeBlock: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := enc.Bytes()
	wantLen := wavHeaderSize + len(samples)*2
	if len(data) != wantLen {
		t.Fatalf("output length = %d, want %d", len(data), wantLen)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Fatalf("missing fmt/data chunks")
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(wantLen-8) {
		t.Errorf("RIFF size = %d, want %d", got, wantLen-8)
	}
	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Errorf("format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != Channels {
		t.Errorf("channels = %d, want %d", got, Channels)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != BitsPerSample {
		t.Errorf("bits per sample = %d, want %d", got, BitsPerSample)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", got, len(samples)*2)
	}

	if enc.TotalFrames() != uint64(len(samples)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(samples))
	}
}

func TestWAVEncoderEmpty(t *testing.T) {
	enc := NewWAV()
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data := enc.Bytes()
	if len(data) != wavHeaderSize {
		t.Fatalf("empty wav length = %d, want %d", len(data), wavHeaderSize)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != 0 {
		t.Errorf("data size = %d, want 0", got)
	}
}

func TestWAVEncoderRejectsWriteAfterClose(t *testing.T) {
	enc := NewWAV()
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := enc.EncodeBlock([]int16{1, 2, 3}); err == nil {
		t.Errorf("EncodeBlock after Close succeeded")
	}
}
