// Package hotkey registers a single global hotkey chord for capture
// watch mode.
package hotkey

import (
	"fmt"
	"log"
	"strings"

	gohook "github.com/robotn/gohook"
)

// Parse splits a chord like "ctrl+alt+s" into the key names gohook
// expects. Keys are lowercased; empty segments are rejected.
func Parse(chord string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(chord, "+") {
		key := strings.ToLower(strings.TrimSpace(part))
		if key == "" {
			return nil, fmt.Errorf("invalid hotkey %q", chord)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("invalid hotkey %q", chord)
	}
	return keys, nil
}

// Listen registers the chord and blocks, invoking callback on each press.
// Returns once Stop is called or the hook loop ends.
func Listen(chord string, callback func()) error {
	keys, err := Parse(chord)
	if err != nil {
		return err
	}

	log.Printf("Registering global hotkey: %s", chord)
	gohook.Register(gohook.KeyDown, keys, func(e gohook.Event) {
		log.Printf("Hotkey %s triggered", chord)
		callback()
	})

	events := gohook.Start()
	<-gohook.Process(events)
	return nil
}

// Stop ends the hook loop and unblocks Listen.
func Stop() {
	gohook.End()
}
