package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"pockettray/settings"
	"pockettray/voice"
)

// pickVoice presents an interactive voice picker and saves the choice.
// The cursor starts on the currently saved voice.
func pickVoice(st *settings.Store) error {
	ids := voice.Known()
	cursor := 0
	for i, id := range ids {
		if id == st.Voice() {
			cursor = i
			break
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	renderList := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Select voice (↑/↓, Enter to confirm):\r\n\r\n")
		for i, id := range ids {
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", voice.Label(id))
			} else {
				fmt.Printf("    %s\r\n", voice.Label(id))
			}
		}
	}

	renderList()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if n == 1 {
			switch buf[0] {
			case 13: // Enter
				fmt.Print("\r\n")
				term.Restore(fd, oldState)
				if err := st.SetVoice(ids[cursor]); err != nil {
					return fmt.Errorf("saving voice: %w", err)
				}
				fmt.Printf("Voice saved: %s\n", voice.Label(ids[cursor]))
				return nil
			case 3: // Ctrl+C
				fmt.Print("\r\n")
				term.Restore(fd, oldState)
				os.Exit(130)
			case 'j': // vim down
				if cursor < len(ids)-1 {
					cursor++
				}
			case 'k': // vim up
				if cursor > 0 {
					cursor--
				}
			}
		} else if n == 3 && buf[0] == 0x1b && buf[1] == '[' {
			switch buf[2] {
			case 'A': // Up arrow
				if cursor > 0 {
					cursor--
				}
			case 'B': // Down arrow
				if cursor < len(ids)-1 {
					cursor++
				}
			}
		}

		lines := len(ids) + 2
		fmt.Printf("\x1b[%dA", lines)
		renderList()
	}
}
