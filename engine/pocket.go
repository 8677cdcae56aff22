package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"pockettray/voice"
)

// chunkBytes is how much PCM each chunk carries: about 170 ms at 24 kHz
// mono, which bounds how long a stop request can lag behind the click.
const chunkBytes = 8192

// Pocket runs the pocket-tts binary once per utterance and streams the
// raw PCM it writes to stdout.
type Pocket struct {
	bin       string
	modelsDir string
}

// NewPocket verifies the model assets and locates the engine binary. It
// runs no inference; call Warmup for that.
func NewPocket(binOverride, modelsDir string) (*Pocket, error) {
	if err := VerifyAssets(modelsDir); err != nil {
		return nil, err
	}
	bin, err := ResolveBinary(binOverride)
	if err != nil {
		return nil, err
	}
	return &Pocket{bin: bin, modelsDir: modelsDir}, nil
}

// ResolveBinary finds the pocket-tts executable: the explicit override
// first, then next to our own binary, then $PATH.
func ResolveBinary(override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("engine binary %s: %w", override, err)
		}
		return override, nil
	}
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), binaryName())
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}
	path, err := exec.LookPath(binaryName())
	if err != nil {
		return "", fmt.Errorf("%s not found next to the executable or in $PATH", binaryName())
	}
	return path, nil
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "pocket-tts.exe"
	}
	return "pocket-tts"
}

// Warmup synthesizes a short phrase and discards the audio, proving the
// binary and weights actually load before the tray appears.
func (p *Pocket) Warmup(ctx context.Context) error {
	chunks, err := p.Synthesize(ctx, "ready", voice.Default())
	if err != nil {
		return err
	}
	for c := range chunks {
		if c.Err != nil {
			return c.Err
		}
	}
	return nil
}

// Synthesize starts one engine process for the utterance. The text goes
// in on stdin; s16le PCM comes back on stdout and is forwarded in
// chunks. Cancelling the context kills the process and closes the
// stream.
func (p *Pocket) Synthesize(ctx context.Context, text, voiceID string) (<-chan Chunk, error) {
	if err := validateVoice(voiceID); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, p.bin,
		"--models", p.modelsDir,
		"--voice", voiceID,
		"--rate", strconv.Itoa(SampleRate),
		"--output-raw",
	)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}

	out := make(chan Chunk, 4)
	go func() {
		defer close(out)
		buf := make([]byte, chunkBytes)
		for {
			n, rerr := io.ReadFull(stdout, buf)
			if n > 0 {
				pcm := make([]byte, n)
				copy(pcm, buf[:n])
				select {
				case out <- Chunk{PCM: pcm}:
				case <-ctx.Done():
					cmd.Wait()
					return
				}
			}
			if rerr == nil {
				continue
			}
			werr := cmd.Wait()
			if ctx.Err() != nil {
				return
			}
			if rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
				out <- Chunk{Err: fmt.Errorf("read engine output: %w", rerr)}
				return
			}
			if werr != nil {
				msg := strings.TrimSpace(stderr.String())
				if msg == "" {
					msg = werr.Error()
				}
				out <- Chunk{Err: fmt.Errorf("engine: %s", lastLine(msg))}
			}
			return
		}
	}()
	return out, nil
}

// lastLine trims a stderr dump down to its final line, which is where
// pocket-tts puts the actual failure reason.
func lastLine(s string) string {
	if i := strings.LastIndexByte(strings.TrimRight(s, "\n"), '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
