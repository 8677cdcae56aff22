package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pockettray/voice"
)

func TestFakeRejectsUnknownVoice(t *testing.T) {
	f := NewFake()
	_, err := f.Synthesize(context.Background(), "hello", "bogus")
	if !errors.Is(err, ErrUnknownVoice) {
		t.Fatalf("expected ErrUnknownVoice, got %v", err)
	}
	if f.RequestCount() != 0 {
		t.Errorf("rejected request was recorded")
	}
}

func TestFakeStreamsChunks(t *testing.T) {
	f := NewFake()
	f.Chunks = 3
	chunks, err := f.Synthesize(context.Background(), "hello", voice.Default())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	var got int
	for c := range chunks {
		if c.Err != nil {
			t.Fatalf("unexpected chunk error: %v", c.Err)
		}
		if len(c.PCM) == 0 {
			t.Errorf("chunk %d has no PCM", got)
		}
		if len(c.PCM)%2 != 0 {
			t.Errorf("chunk %d has odd byte count %d", got, len(c.PCM))
		}
		got++
	}
	if got != 3 {
		t.Errorf("got %d chunks, want 3", got)
	}
	reqs := f.Requests()
	if len(reqs) != 1 || reqs[0].Text != "hello" || reqs[0].Voice != voice.Default() {
		t.Errorf("unexpected recorded requests: %+v", reqs)
	}
}

func TestFakeCancellationBounded(t *testing.T) {
	f := NewFake()
	f.Chunks = 100
	f.Delay = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chunks, err := f.Synthesize(ctx, "long text", voice.Default())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	var got int
	for c := range chunks {
		if c.Err != nil {
			t.Fatalf("unexpected chunk error: %v", c.Err)
		}
		got++
		if got == 2 {
			cancel()
		}
	}
	if got > 4 {
		t.Errorf("stream delivered %d chunks after early cancel", got)
	}
}

func TestFakeFailureMidStream(t *testing.T) {
	f := NewFake()
	f.Chunks = 5
	f.FailAt = 2

	chunks, err := f.Synthesize(context.Background(), "hello", voice.Default())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	var good int
	var failed error
	for c := range chunks {
		if c.Err != nil {
			failed = c.Err
			continue
		}
		good++
	}
	if good != 1 {
		t.Errorf("got %d good chunks before failure, want 1", good)
	}
	if failed == nil {
		t.Fatalf("stream ended without the injected error")
	}
}

func writeAssets(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func allAssetNames() []string {
	names := []string{WeightsFile, TokenizerFile}
	for _, id := range voice.Known() {
		names = append(names, VoiceFile(id))
	}
	return names
}

func TestVerifyAssetsComplete(t *testing.T) {
	dir := t.TempDir()
	writeAssets(t, dir, allAssetNames()...)
	if err := VerifyAssets(dir); err != nil {
		t.Errorf("VerifyAssets on complete dir: %v", err)
	}
}

func TestVerifyAssetsMissingDir(t *testing.T) {
	err := VerifyAssets(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
	if !strings.Contains(err.Error(), "models directory not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVerifyAssetsNamesEveryMissingFile(t *testing.T) {
	dir := t.TempDir()
	var partial []string
	for _, name := range allAssetNames() {
		if name == TokenizerFile || name == VoiceFile("javert") {
			continue
		}
		partial = append(partial, name)
	}
	writeAssets(t, dir, partial...)

	err := VerifyAssets(dir)
	if err == nil {
		t.Fatalf("expected error for missing files")
	}
	for _, want := range []string{TokenizerFile, VoiceFile("javert")} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not name %s: %v", want, err)
		}
	}
}

func TestResolveBinaryOverride(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "pocket-tts")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	got, err := ResolveBinary(bin)
	if err != nil {
		t.Fatalf("ResolveBinary: %v", err)
	}
	if got != bin {
		t.Errorf("got %s, want %s", got, bin)
	}

	if _, err := ResolveBinary(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("expected error for missing override")
	}
}

func TestLastLine(t *testing.T) {
	cases := []struct{ in, want string }{
		{"single line", "single line"},
		{"first\nsecond", "second"},
		{"first\nsecond\n", "second"},
		{"", ""},
	}
	for _, c := range cases {
		if got := lastLine(c.in); got != c.want {
			t.Errorf("lastLine(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
