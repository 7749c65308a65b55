package hotkey

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		chord string
		want  []string
	}{
		{"ctrl+alt+s", []string{"ctrl", "alt", "s"}},
		{"Ctrl+Shift+Q", []string{"ctrl", "shift", "q"}},
		{" ctrl + s ", []string{"ctrl", "s"}},
		{"f9", []string{"f9"}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.chord)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tc.chord, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Parse(%q) = %v, want %v", tc.chord, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, chord := range []string{"", "ctrl++s", "+", "ctrl+"} {
		if _, err := Parse(chord); err == nil {
			t.Errorf("Expected error for chord %q", chord)
		}
	}
}
