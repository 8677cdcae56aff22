// Package encoder turns raw engine PCM into audio files for the
// save-to-file path.
package encoder

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder consumes 16-bit mono sample blocks; Bytes returns the
// complete file image after Close.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
}

// ForPath picks an encoder from the file extension: .wav or .flac.
func ForPath(path string) (Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return NewWAV(), nil
	case ".flac":
		return NewFlac()
	default:
		return nil, fmt.Errorf("unsupported audio format %q (use .wav or .flac)", filepath.Ext(path))
	}
}

// Samples reinterprets little-endian PCM bytes as 16-bit samples. An
// odd trailing byte is dropped.
func Samples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}
