package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pockettray/voice"
)

func tmpPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), FileName)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !s.MonitorEnabled {
		t.Fatalf("monitor_enabled default = false, want true")
	}
	if s.CurrentVoice != voice.Default() {
		t.Fatalf("current_voice default = %q, want %q", s.CurrentVoice, voice.Default())
	}
}

func TestRoundTripAllVoices(t *testing.T) {
	path := tmpPath(t)
	for _, id := range voice.Known() {
		for _, enabled := range []bool{true, false} {
			in := Settings{MonitorEnabled: enabled, CurrentVoice: id}
			if err := Save(path, in); err != nil {
				t.Fatalf("Save(%q, %v): %v", id, enabled, err)
			}
			if out := Load(path); out != in {
				t.Fatalf("round trip mismatch: saved %+v, loaded %+v", in, out)
			}
		}
	}
}

func TestLoadCorruptFileGivesDefaults(t *testing.T) {
	path := tmpPath(t)
	if err := os.WriteFile(path, []byte("{monitor_enabled: maybe"), 0o644); err != nil {
		t.Fatal(err)
	}
	if s := Load(path); s != Defaults() {
		t.Fatalf("corrupt file loaded as %+v, want defaults", s)
	}
}

func TestLoadUnknownVoiceFallsBack(t *testing.T) {
	path := tmpPath(t)
	if err := os.WriteFile(path, []byte(`{"monitor_enabled":false,"current_voice":"narrator"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := Load(path)
	if s.CurrentVoice != voice.Default() {
		t.Fatalf("unknown voice loaded as %q, want default", s.CurrentVoice)
	}
	if s.MonitorEnabled {
		t.Fatalf("valid monitor_enabled=false was not kept")
	}
}

func TestLoadIgnoresUnknownFieldsAndKeepsDefaultsForMissing(t *testing.T) {
	path := tmpPath(t)
	// No monitor_enabled field, one field nobody knows.
	if err := os.WriteFile(path, []byte(`{"current_voice":"javert","theme":"dark"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := Load(path)
	if s.CurrentVoice != "javert" {
		t.Fatalf("current_voice = %q, want javert", s.CurrentVoice)
	}
	if !s.MonitorEnabled {
		t.Fatalf("missing monitor_enabled should keep the default true")
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	path := tmpPath(t)
	if err := Save(path, Defaults()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file %q left behind after save", e.Name())
		}
	}
}

func TestStoreMutationsPersist(t *testing.T) {
	path := tmpPath(t)
	st := Open(path)

	if err := st.SetVoice("cosette"); err != nil {
		t.Fatalf("SetVoice: %v", err)
	}
	if err := st.SetMonitoring(false); err != nil {
		t.Fatalf("SetMonitoring: %v", err)
	}
	if st.Voice() != "cosette" || st.Monitoring() {
		t.Fatalf("store state = %+v after mutations", st.Get())
	}

	reopened := Open(path)
	if got := reopened.Get(); got != (Settings{MonitorEnabled: false, CurrentVoice: "cosette"}) {
		t.Fatalf("reopened store = %+v", got)
	}
}

func TestStoreRejectsUnknownVoice(t *testing.T) {
	st := Open(tmpPath(t))
	if err := st.SetVoice("narrator"); err == nil {
		t.Fatalf("SetVoice(narrator) succeeded, want error")
	}
	if st.Voice() != voice.Default() {
		t.Fatalf("rejected voice mutated store to %q", st.Voice())
	}
}

func TestStoreSaveFailureKeepsMemoryValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	st := Open(path)

	// Make the directory unwritable so the temp-file write fails.
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)

	err := st.SetVoice("fantine")
	if err == nil {
		t.Skip("directory permissions not enforced on this platform")
	}
	if st.Voice() != "fantine" {
		t.Fatalf("in-memory voice = %q after failed save, want fantine", st.Voice())
	}
}
