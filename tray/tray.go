// Package tray owns the system tray icon and menu. It wraps
// fyne.io/systray behind package-level setters so the rest of the app
// never touches menu items directly. Handlers and initial state must be
// registered before Run; updates after Run are safe from any goroutine.
package tray

import (
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/systray"

	"pockettray/icon"
	"pockettray/voice"
)

const tooltipPrefix = "Pocket-Tray TTS - "

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once
	ready     atomic.Bool

	monitorFn func(bool)
	stopFn    func()
	voiceFn   func(string)

	stateMu    sync.Mutex
	monitorOn  bool
	voiceSel   string
	tooltip    = "Loading model..."
	releaseURL string
	updateText string

	mMonitor   *systray.MenuItem
	mStop      *systray.MenuItem
	mUpdate    *systray.MenuItem
	voiceItems []*systray.MenuItem
)

// OnMonitorToggle registers the handler for the Monitoring checkbox.
func OnMonitorToggle(fn func(enabled bool)) { monitorFn = fn }

// OnStop registers the handler for the Stop item.
func OnStop(fn func()) { stopFn = fn }

// OnVoiceSelect registers the handler for the Voices submenu.
func OnVoiceSelect(fn func(id string)) { voiceFn = fn }

// SetState primes the menu checkboxes before Run builds them.
func SetState(monitoring bool, voiceID string) {
	stateMu.Lock()
	monitorOn = monitoring
	voiceSel = voiceID
	stateMu.Unlock()
}

// Run puts the icon in the tray and blocks until Quit. Call it from the
// main goroutine; some platforms require it.
func Run() {
	systray.Run(onReady, onExit)
}

// Quit removes the tray icon; Run returns shortly after.
func Quit() {
	closeOnce.Do(func() { close(quitCh) })
	systray.Quit()
}

// QuitRequested closes when the user picks Quit from the menu or the
// tray dies underneath us.
func QuitRequested() <-chan struct{} { return quitCh }

// SetIcon swaps the tray icon frame. A no-op until the tray exists.
func SetIcon(frame []byte) {
	if ready.Load() {
		systray.SetIcon(frame)
	}
}

// SetTooltip sets the hover status, remembered so error flashes can
// revert to it.
func SetTooltip(status string) {
	stateMu.Lock()
	tooltip = status
	stateMu.Unlock()
	applyTooltip(status)
}

// SetError flashes an error in the tooltip for ten seconds, then
// reverts to the current status.
func SetError(msg string) {
	applyTooltip("Error: " + msg)
	go func() {
		time.Sleep(10 * time.Second)
		stateMu.Lock()
		cur := tooltip
		stateMu.Unlock()
		applyTooltip(cur)
	}()
}

// SetUpdateAvailable reveals the update item pointing at the release
// page.
func SetUpdateAvailable(version, url string) {
	stateMu.Lock()
	releaseURL = url
	updateText = "Update available: " + version
	stateMu.Unlock()
	if ready.Load() {
		showUpdateItem()
	}
}

func applyTooltip(status string) {
	if ready.Load() {
		systray.SetTooltip(tooltipPrefix + status)
	}
}

func showUpdateItem() {
	stateMu.Lock()
	text := updateText
	stateMu.Unlock()
	mUpdate.SetTitle(text)
	mUpdate.Show()
}

func onReady() {
	systray.SetIcon(icon.Static())
	stateMu.Lock()
	mon, sel, tip := monitorOn, voiceSel, tooltip
	pendingUpdate := updateText != ""
	stateMu.Unlock()
	systray.SetTooltip(tooltipPrefix + tip)

	mMonitor = systray.AddMenuItemCheckbox("Monitoring", "Speak new clipboard text", mon)
	mStop = systray.AddMenuItem("Stop", "Stop the current speech")

	systray.AddSeparator()
	mVoices := systray.AddMenuItem("Voices", "Voice for the next utterance")
	ids := voice.Known()
	voiceItems = make([]*systray.MenuItem, len(ids))
	for i, id := range ids {
		label := voice.Label(id)
		item := mVoices.AddSubMenuItemCheckbox(label, "Speak with "+label, id == sel)
		voiceItems[i] = item
		go watchVoiceItem(i, id, item)
	}

	systray.AddSeparator()
	mUpdate = systray.AddMenuItem("Update available", "Open the release page")
	mUpdate.Hide()
	mQuit := systray.AddMenuItem("Quit", "Quit Pocket-Tray")

	ready.Store(true)
	if pendingUpdate {
		showUpdateItem()
	}
	go handleClicks(mQuit)
}

func onExit() {
	closeOnce.Do(func() { close(quitCh) })
}

func watchVoiceItem(idx int, id string, item *systray.MenuItem) {
	for range item.ClickedCh {
		stateMu.Lock()
		for j, it := range voiceItems {
			if j == idx {
				it.Check()
			} else {
				it.Uncheck()
			}
		}
		voiceSel = id
		stateMu.Unlock()
		if voiceFn != nil {
			voiceFn(id)
		}
	}
}

func handleClicks(mQuit *systray.MenuItem) {
	for {
		select {
		case <-mMonitor.ClickedCh:
			stateMu.Lock()
			monitorOn = !monitorOn
			on := monitorOn
			stateMu.Unlock()
			if on {
				mMonitor.Check()
			} else {
				mMonitor.Uncheck()
			}
			if monitorFn != nil {
				monitorFn(on)
			}
		case <-mStop.ClickedCh:
			if stopFn != nil {
				stopFn()
			}
		case <-mUpdate.ClickedCh:
			stateMu.Lock()
			url := releaseURL
			stateMu.Unlock()
			if url != "" {
				openURL(url)
			}
		case <-mQuit.ClickedCh:
			closeOnce.Do(func() { close(quitCh) })
			return
		}
	}
}

func openURL(url string) {
	switch runtime.GOOS {
	case "darwin":
		exec.Command("open", url).Start()
	case "windows":
		exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		exec.Command("xdg-open", url).Start()
	}
}
