package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog    zerolog.Logger
	diagFile   *os.File
	speechFile *os.File
	logMu      sync.Mutex
	logReady   bool
	pid        int
	dir        string
)

// UtteranceMetrics is the per-utterance record written after each
// playback attempt, successful or not.
type UtteranceMetrics struct {
	ID      string
	Voice   string
	Chars   int
	Chunks  int
	PCMKB   float64
	TotalMs float64
	Stopped bool
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: POCKETTRAY_LOG_PATH environment variable
	envPath := os.Getenv("POCKETTRAY_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	speechPath := filepath.Join(dir, "speech_log.txt")
	speechFile, err = os.OpenFile(speechPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if speechFile != nil {
		speechFile.Close()
		speechFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Utterance records one playback attempt in the diagnostics log.
func Utterance(m UtteranceMetrics) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("id", m.ID).
		Str("voice", m.Voice).
		Int("chars", m.Chars).
		Int("chunks", m.Chunks).
		Float64("pcm_kb", m.PCMKB).
		Float64("total_ms", m.TotalMs).
		Bool("stopped", m.Stopped).
		Msg("utterance")
}

// SpokenText appends the text of a completed utterance to the speech log.
// Stopped or failed utterances are not recorded here.
func SpokenText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	speechFile.WriteString(line)
}

// Transition records an orchestrator state change.
func Transition(from, to string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("from", from).
		Str("to", to).
		Msg("state")
}

func SessionStart(engine, voice, modelsDir string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("engine", engine).
		Str("voice", voice).
		Str("models", modelsDir).
		Msg("session_start")
}

func SessionEnd(spoken int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("spoken", spoken).
		Msg("session_end")
}
