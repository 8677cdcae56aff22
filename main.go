package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"pockettray/audio"
	"pockettray/clipboard"
	"pockettray/config"
	"pockettray/doctor"
	"pockettray/encoder"
	"pockettray/engine"
	"pockettray/icon"
	"pockettray/log"
	"pockettray/player"
	"pockettray/settings"
	"pockettray/shutdown"
	"pockettray/tray"
	"pockettray/update"
	"pockettray/voice"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "update" {
		os.Exit(runUpdate())
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	setupFlag := flag.Bool("setup", false, "Select the speaking voice interactively")
	sayFlag := flag.String("say", "", "Speak the given text once and exit")
	voiceFlag := flag.String("voice", "", "Voice for -say (default: saved setting)")
	outFlag := flag.String("out", "", "With -say: write a .wav or .flac file instead of playing")
	modelsFlag := flag.String("models", cfg.ModelsDir, "Models directory (default: models beside the executable)")
	engineFlag := flag.String("engine", cfg.EngineBin, "pocket-tts binary (default: beside the executable, then $PATH)")
	pollFlag := flag.Duration("poll", cfg.PollInterval, "Clipboard poll interval")
	fgFlag := flag.Bool("fg", false, "Stay in the foreground instead of detaching")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("pockettray %s\n", version)
		os.Exit(0)
	}

	modelsDir := resolveModelsDir(*modelsFlag)

	if *doctorFlag {
		os.Exit(doctor.Run(modelsDir, *engineFlag))
	}

	if *testFlag {
		runTestMode(*pollFlag)
		return
	}

	settingsPath, err := settings.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st := settings.Open(settingsPath)

	if *setupFlag {
		if err := pickVoice(st); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *sayFlag != "" {
		os.Exit(sayOnce(*sayFlag, *voiceFlag, *outFlag, *engineFlag, modelsDir, st))
	}
	if *outFlag != "" {
		fmt.Fprintln(os.Stderr, "Error: -out requires -say")
		os.Exit(1)
	}

	// Detach: re-exec in the background, return the shell prompt
	if !*fgFlag && os.Getenv("_POCKETTRAY_BG") == "" {
		exe, err := os.Executable()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Env = append(os.Environ(), "_POCKETTRAY_BG=1")
		devnull, _ := os.Open(os.DevNull)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devnull, devnull, devnull
		if err := cmd.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart("pocket-tts", st.Voice(), modelsDir)

	// Everything that can fail fatally happens before the tray appears.
	eng, err := engine.NewPocket(*engineFlag, modelsDir)
	if err != nil {
		fatalStartup("engine init", err)
	}

	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 2*time.Minute)
	err = eng.Warmup(warmCtx)
	cancelWarm()
	if err != nil {
		fatalStartup("engine warmup", err)
	}
	log.Info("engine_ready")

	actx, err := audio.NewContext()
	if err != nil {
		fatalStartup("audio init", err)
	}
	defer actx.Close()

	sink, err := actx.NewSink(audio.Config{SampleRate: engine.SampleRate, Channels: engine.Channels})
	if err != nil {
		fatalStartup("audio sink init", err)
	}
	defer sink.Close()

	pl := player.New(eng, sink)
	pl.Start()

	watcher := clipboard.NewWatcher(clipboard.System{}, st, *pollFlag, pl.Speak)
	watcherStop := make(chan struct{})
	go watcher.Run(watcherStop)

	anim := icon.NewAnimator(cfg.FrameInterval, tray.SetIcon)
	animStop := make(chan struct{})
	go anim.Run(animStop)

	// Mirror player transitions onto the icon and tooltip. This is the
	// event stream's only consumer.
	go func() {
		for tr := range pl.Events() {
			anim.SetSpeaking(tr.To == player.Speaking)
			switch {
			case tr.Err != nil:
				tray.SetError(tr.Err.Error())
			case tr.To == player.Speaking:
				tray.SetTooltip("Speaking...")
			case tr.To == player.Idle:
				tray.SetTooltip("Ready")
			}
		}
	}()

	tray.SetState(st.Monitoring(), st.Voice())
	tray.OnMonitorToggle(func(on bool) {
		if err := st.SetMonitoring(on); err != nil {
			log.Errorf("settings save failed: %v", err)
			tray.SetError("could not save settings")
		}
		if on {
			log.Info("monitoring_enabled")
		} else {
			log.Info("monitoring_disabled")
		}
	})
	tray.OnStop(pl.Stop)
	tray.OnVoiceSelect(func(id string) {
		if err := st.SetVoice(id); err != nil {
			log.Errorf("settings save failed: %v", err)
			tray.SetError("could not save settings")
			return
		}
		log.Info("voice_selected: " + id)
	})

	if !cfg.NoUpdateCheck {
		update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
			log.Info("update_available: " + rel.Version)
			tray.SetUpdateAvailable(rel.Version, update.ReleaseURL(rel.Version))
		})
	}

	var shutdownOnce sync.Once
	gracefulShutdown := func() {
		shutdownOnce.Do(func() {
			close(watcherStop)
			pl.Shutdown()
			close(animStop)
			log.SessionEnd(pl.Spoken())
			log.Close()
			tray.Quit()
		})
	}

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-tray.QuitRequested():
		}
		gracefulShutdown()
	}()

	tray.SetTooltip("Ready")
	tray.Run()
}

func fatalStartup(what string, err error) {
	log.Errorf("%s error: %v", what, err)
	log.Close()
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", what, err)
	os.Exit(1)
}

// resolveModelsDir defaults to the models directory beside the
// executable so launches outside a shell still find the assets.
func resolveModelsDir(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	exe, err := os.Executable()
	if err != nil {
		return "models"
	}
	return filepath.Join(filepath.Dir(exe), "models")
}

func runUpdate() int {
	if version == "dev" {
		fmt.Println("Dev build: cannot check for updates.")
		return 0
	}
	fmt.Printf("pockettray %s, checking for updates...\n", version)
	rel, err := update.CheckLatest(version)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if rel == nil {
		fmt.Println("Already up to date.")
		return 0
	}
	fmt.Printf("Update available: %s -> %s\n", version, rel.Version)
	fmt.Print("Continue? [y/N] ")
	var answer string
	fmt.Scanln(&answer)
	if answer != "y" && answer != "Y" {
		fmt.Println("Aborted.")
		return 0
	}
	fmt.Printf("Downloading %s...\n", rel.Version)
	if err := update.Apply(rel); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	fmt.Printf("Updated to %s\n", rel.Version)
	return 0
}

// sayOnce synthesizes one text and either plays it or writes it to an
// audio file, for scripting and quick voice auditions.
func sayOnce(text, voiceID, outPath, engineBin, modelsDir string, st *settings.Store) int {
	if voiceID == "" {
		voiceID = st.Voice()
	} else if !voice.Valid(voiceID) {
		fmt.Fprintf(os.Stderr, "Error: unknown voice %q (known: %s)\n", voiceID, strings.Join(voice.Known(), ", "))
		return 1
	}

	eng, err := engine.NewPocket(engineBin, modelsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chunks, err := eng.Synthesize(ctx, text, voiceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if outPath != "" {
		return writeAudioFile(outPath, chunks)
	}

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer actx.Close()
	sink, err := actx.NewSink(audio.Config{SampleRate: engine.SampleRate, Channels: engine.Channels})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer sink.Close()

	if err := sink.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for c := range chunks {
		if c.Err != nil {
			sink.Stop()
			fmt.Fprintf(os.Stderr, "Error: %v\n", c.Err)
			return 1
		}
		if err := sink.Write(c.PCM); err != nil {
			sink.Stop()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	if err := sink.Drain(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func writeAudioFile(path string, chunks <-chan engine.Chunk) int {
	enc, err := encoder.ForPath(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for c := range chunks {
		if c.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", c.Err)
			return 1
		}
		if err := enc.EncodeBlock(encoder.Samples(c.PCM)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	if err := enc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := os.WriteFile(path, enc.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	secs := float64(enc.TotalFrames()) / float64(encoder.SampleRate)
	fmt.Printf("Wrote %s (%.1fs, %d KB)\n", path, secs, len(enc.Bytes())/1024)
	return 0
}
