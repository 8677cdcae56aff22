// Package doctor runs interactive end-to-end diagnostics: model
// assets, synthesis and playback, clipboard access.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"pockettray/audio"
	"pockettray/clipboard"
	"pockettray/engine"
	"pockettray/voice"
)

// Run executes the checks and returns an exit code (0=all pass, 1=any
// fail).
func Run(modelsDir, engineBin string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("pockettray doctor - interactive system diagnostics")
	fmt.Println("===================================================")

	allPass := true

	if !checkAssets(modelsDir) {
		allPass = false
	}
	if allPass && !checkSpeech(modelsDir, engineBin) {
		allPass = false
	}
	if allPass && !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func checkAssets(modelsDir string) bool {
	fmt.Println()
	fmt.Println("[1/3] Model assets")

	if err := engine.VerifyAssets(modelsDir); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: all model files present in %s\n", modelsDir)
	return true
}

func checkSpeech(modelsDir, engineBin string) bool {
	fmt.Println()
	fmt.Println("[2/3] Synthesis and playback")

	eng, err := engine.NewPocket(engineBin, modelsDir)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	sink, err := actx.NewSink(audio.Config{
		SampleRate: engine.SampleRate,
		Channels:   engine.Channels,
	})
	if err != nil {
		fmt.Printf("  FAIL: cannot open playback device: %v\n", err)
		return false
	}
	defer sink.Close()

	fmt.Println("You should hear a short sentence now...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	chunks, err := eng.Synthesize(ctx, "The quick brown fox jumps over the lazy dog.", voice.Default())
	if err != nil {
		fmt.Printf("  FAIL: synthesis error: %v\n", err)
		return false
	}
	if err := sink.Start(); err != nil {
		fmt.Printf("  FAIL: playback start: %v\n", err)
		return false
	}

	var played int
	for c := range chunks {
		if c.Err != nil {
			sink.Stop()
			fmt.Printf("  FAIL: synthesis error: %v\n", c.Err)
			return false
		}
		if err := sink.Write(c.PCM); err != nil {
			sink.Stop()
			fmt.Printf("  FAIL: playback error: %v\n", err)
			return false
		}
		played += len(c.PCM)
	}
	if err := sink.Drain(); err != nil {
		fmt.Printf("  FAIL: playback drain: %v\n", err)
		return false
	}
	if played == 0 {
		fmt.Println("  FAIL: engine produced no audio")
		return false
	}
	fmt.Printf("  Played %.1f KB of audio\n", float64(played)/1024)

	// Fresh reader to clear any buffered input.
	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Did you hear it? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: synthesis and playback verified by user")
		return true
	}
	fmt.Println("  FAIL: playback not confirmed")
	return false
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[3/3] Clipboard access")

	testStr := fmt.Sprintf("pockettray-doctor-%d", time.Now().UnixNano())

	type cbResult struct {
		readback string
		err      error
		phase    string
	}
	ch := make(chan cbResult, 1)
	go func() {
		prev, _ := clipboard.System{}.Read()
		if err := clipboard.Write(testStr); err != nil {
			ch <- cbResult{err: err, phase: "write"}
			return
		}
		got, err := clipboard.System{}.Read()
		if err != nil {
			ch <- cbResult{err: err, phase: "read"}
			return
		}
		// Put the user's clipboard back.
		clipboard.Write(prev)
		ch <- cbResult{readback: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			fmt.Printf("  FAIL: clipboard %s failed: %v\n", res.phase, res.err)
			return false
		}
		if res.readback != testStr {
			fmt.Printf("  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, res.readback)
			return false
		}
		fmt.Println("  PASS: clipboard write/read verified")
		return true
	case <-time.After(3 * time.Second):
		fmt.Println("  FAIL: clipboard timed out (clipboard tool hung - compositor not accessible?)")
		return false
	}
}
