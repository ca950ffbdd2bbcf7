package input

import "strings"

// keycodes is the static lowercased-name -> engine keycode table (spec.md
// §4.4). Values are arbitrary but stable small integers; a real
// integration would map these onto the engine's own Key enum.
var keycodes = map[string]int{
	"a": 65, "b": 66, "c": 67, "d": 68, "e": 69, "f": 70, "g": 71, "h": 72,
	"i": 73, "j": 74, "k": 75, "l": 76, "m": 77, "n": 78, "o": 79, "p": 80,
	"q": 81, "r": 82, "s": 83, "t": 84, "u": 85, "v": 86, "w": 87, "x": 88,
	"y": 89, "z": 90,
	"0": 48, "1": 49, "2": 50, "3": 51, "4": 52, "5": 53, "6": 54, "7": 55, "8": 56, "9": 57,

	"space": 32, "tab": 9, "enter": 13, "return": 13, "escape": 27, "backspace": 8, "delete": 46,

	"up": 1000, "down": 1001, "left": 1002, "right": 1003,

	"shift": 1100, "ctrl": 1101, "control": 1101, "alt": 1102,
	"super": 1103, "meta": 1103, "cmd": 1103, "command": 1103, "win": 1103, "windows": 1103,

	"f1": 1201, "f2": 1202, "f3": 1203, "f4": 1204, "f5": 1205, "f6": 1206,
	"f7": 1207, "f8": 1208, "f9": 1209, "f10": 1210, "f11": 1211, "f12": 1212,

	"capslock": 1300, "numlock": 1301, "scrolllock": 1302,

	"comma": 44, "period": 46, "slash": 47, "semicolon": 59, "quote": 39,
	"bracketleft": 91, "bracketright": 93, "backslash": 92, "minus": 45, "equal": 61, "grave": 96,
}

// ResolveKey maps name (case-insensitive) to an engine keycode. Single-
// character names fall back to their ASCII uppercase codepoint (spec.md
// §4.4: "Single-character names fall back to ASCII uppercase letters").
// ok is false for an unresolvable name.
func ResolveKey(name string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if code, ok := keycodes[lower]; ok {
		return code, true
	}
	if len([]rune(lower)) == 1 {
		r := []rune(strings.ToUpper(lower))[0]
		if r >= 'A' && r <= 'Z' {
			return int(r), true
		}
	}
	return 0, false
}
