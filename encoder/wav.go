package encoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const wavHeaderSize = 44

// WAVEncoder buffers samples behind a placeholder RIFF header and
// patches the sizes in on Close.
type WAVEncoder struct {
	buf         bytes.Buffer
	totalFrames uint64
	closed      bool
}

func NewWAV() *WAVEncoder {
	w := &WAVEncoder{}
	w.buf.Write(make([]byte, wavHeaderSize))
	return w
}

func (w *WAVEncoder) EncodeBlock(block []int16) error {
	if w.closed {
		return fmt.Errorf("wav: encode after close")
	}
	var b [2]byte
	for _, s := range block {
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		w.buf.Write(b[:])
	}
	w.totalFrames += uint64(len(block))
	return nil
}

func (w *WAVEncoder) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	data := w.buf.Bytes()
	dataSize := uint32(len(data) - wavHeaderSize)
	byteRate := uint32(SampleRate * Channels * BitsPerSample / 8)
	blockAlign := uint16(Channels * BitsPerSample / 8)

	copy(data[0:4], "RIFF")
	binary.LittleEndian.PutUint32(data[4:8], wavHeaderSize-8+dataSize)
	copy(data[8:12], "WAVE")
	copy(data[12:16], "fmt ")
	binary.LittleEndian.PutUint32(data[16:20], 16)
	binary.LittleEndian.PutUint16(data[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(data[22:24], Channels)
	binary.LittleEndian.PutUint32(data[24:28], SampleRate)
	binary.LittleEndian.PutUint32(data[28:32], byteRate)
	binary.LittleEndian.PutUint16(data[32:34], blockAlign)
	binary.LittleEndian.PutUint16(data[34:36], BitsPerSample)
	copy(data[36:40], "data")
	binary.LittleEndian.PutUint32(data[40:44], dataSize)
	return nil
}

func (w *WAVEncoder) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *WAVEncoder) TotalFrames() uint64 {
	return w.totalFrames
}
