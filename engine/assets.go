package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pockettray/voice"
)

// Model files the engine loads at startup. The shared weights and the
// tokenizer are voice-independent; each voice adds one embedding file.
const (
	WeightsFile   = "tts_b6369a24.safetensors"
	TokenizerFile = "tokenizer.model"
)

// VoiceFile returns the embedding file name for a voice id.
func VoiceFile(id string) string { return id + ".safetensors" }

// VerifyAssets checks that every file the engine needs exists in dir.
// The error names all missing files at once so a broken deployment can
// be fixed in a single pass.
func VerifyAssets(dir string) error {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("models directory not found at %s (place the models folder next to the executable)", dir)
	}
	var missing []string
	for _, name := range requiredFiles() {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing model files in %s: %s", dir, strings.Join(missing, ", "))
	}
	return nil
}

func requiredFiles() []string {
	files := []string{WeightsFile, TokenizerFile}
	for _, id := range voice.Known() {
		files = append(files, VoiceFile(id))
	}
	return files
}
