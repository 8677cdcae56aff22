package encoder

import "testing"

func TestForPath(t *testing.T) {
	if enc, err := ForPath("out.wav"); err != nil {
		t.Errorf("ForPath(.wav): %v", err)
	} else if _, ok := enc.(*WAVEncoder); !ok {
		t.Errorf("ForPath(.wav) = %T", enc)
	}

	if enc, err := ForPath("OUT.FLAC"); err != nil {
		t.Errorf("ForPath(.FLAC): %v", err)
	} else if _, ok := enc.(*FlacEncoder); !ok {
		t.Errorf("ForPath(.FLAC) = %T", enc)
	}

	if _, err := ForPath("out.mp3"); err == nil {
		t.Errorf("ForPath(.mp3) succeeded, want error")
	}
	if _, err := ForPath("noext"); err == nil {
		t.Errorf("ForPath without extension succeeded, want error")
	}
}

func TestSamples(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80}
	got := Samples(pcm)
	want := []int16{1, -1, -32768}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	// Odd trailing byte is dropped, not mangled.
	if got := Samples([]byte{0x01, 0x00, 0x02}); len(got) != 1 || got[0] != 1 {
		t.Errorf("odd-length pcm decoded as %v", got)
	}
	if got := Samples(nil); len(got) != 0 {
		t.Errorf("nil pcm decoded as %v", got)
	}
}
