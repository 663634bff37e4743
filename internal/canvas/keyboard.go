package canvas

import (
	"strings"

	"github.com/pathbuilder/core/internal/geometry"
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModAlt Modifier = 1 << iota
	ModCtrl
	ModMeta
	ModShift
)

var modifierNames = []struct {
	mod   Modifier
	names []string
}{
	{ModAlt, []string{"alt", "altkey", "option"}},
	{ModCtrl, []string{"ctrl", "ctrlkey", "control"}},
	{ModMeta, []string{"meta", "metakey", "cmd", "command"}},
	{ModShift, []string{"shift", "shiftkey"}},
}

// ParseModifier maps a single modifier name to its bit.
func ParseModifier(name string) (Modifier, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range modifierNames {
		for _, n := range m.names {
			if n == name {
				return m.mod, true
			}
		}
	}
	return 0, false
}

// ParseModifiers combines names into one set, ignoring unknown names.
func ParseModifiers(names []string) Modifier {
	var mods Modifier
	for _, n := range names {
		if m, ok := ParseModifier(n); ok {
			mods |= m
		}
	}
	return mods
}

func (m Modifier) Has(o Modifier) bool {
	return o != 0 && m&o == o
}

func (m Modifier) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.names[0])
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

type Platform string

const (
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "win"
	PlatformIOS     Platform = "mobile-ios"
	PlatformAndroid Platform = "mobile-android"
	PlatformOther   Platform = ""
)

// DetectPlatform classifies a navigator platform string, falling back to the
// user agent for Android.
func DetectPlatform(platform, userAgent string) Platform {
	switch {
	case strings.HasPrefix(platform, "iP"):
		return PlatformIOS
	case strings.Contains(platform, "Android"):
		return PlatformAndroid
	case strings.HasPrefix(platform, "Mac"):
		return PlatformMac
	case strings.HasPrefix(platform, "Win"):
		return PlatformWindows
	case strings.Contains(userAgent, "Android"):
		return PlatformAndroid
	}
	return PlatformOther
}

// UndoModifier is Cmd on a Mac and Ctrl elsewhere.
func (p Platform) UndoModifier() Modifier {
	if p == PlatformMac {
		return ModMeta
	}
	return ModCtrl
}

// FineModifier selects single-unit arrow steps.
func (p Platform) FineModifier() Modifier {
	if p == PlatformMac {
		return ModAlt
	}
	return ModCtrl
}

const CoarseModifier = ModShift

// Arrow key step sizes.
const (
	StepFine    = 1
	StepDefault = 5
	StepCoarse  = 50
)

// Key names handled by the store.
const (
	KeyUndo      = "Undo"
	KeyRedo      = "Redo"
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
)

type KeyEvent struct {
	Key  string
	Mods Modifier
}

func IsUndo(e KeyEvent, p Platform) bool {
	if e.Key == KeyUndo {
		return true
	}
	return e.Key == "z" && e.Mods == p.UndoModifier()
}

// IsRedo accepts the Redo key, mod+y and mod+shift+z.
func IsRedo(e KeyEvent, p Platform) bool {
	switch {
	case e.Key == KeyRedo:
		return true
	case e.Key == "y" && e.Mods == p.UndoModifier():
		return true
	case e.Key == "z" && e.Mods == p.UndoModifier()|ModShift:
		return true
	}
	return false
}

func IsDelete(e KeyEvent) bool {
	return (e.Key == KeyBackspace || e.Key == KeyDelete) && e.Mods == 0
}

// ArrowVector is the unit direction of an arrow key.
func ArrowVector(key string) (geometry.Point, bool) {
	switch key {
	case "ArrowLeft":
		return geometry.Pt(-1, 0), true
	case "ArrowRight":
		return geometry.Pt(1, 0), true
	case "ArrowUp":
		return geometry.Pt(0, -1), true
	case "ArrowDown":
		return geometry.Pt(0, 1), true
	}
	return geometry.Point{}, false
}

// ArrowStep picks the nudge distance for mods. Other combinations are not
// nudges.
func ArrowStep(mods Modifier, p Platform) (float64, bool) {
	switch mods {
	case 0:
		return StepDefault, true
	case CoarseModifier:
		return StepCoarse, true
	case p.FineModifier():
		return StepFine, true
	}
	return 0, false
}
