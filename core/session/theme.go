package session

import "sync"

type ThemeMode string

const (
	ThemeDark  ThemeMode = "dark"
	ThemeLight ThemeMode = "light"
)

// Theme is the process-wide light/dark flag. It starts dark and is not persisted.
type Theme struct {
	mu   sync.RWMutex
	dark bool
}

func NewTheme() *Theme {
	return &Theme{dark: true}
}

func (t *Theme) Mode() ThemeMode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.dark {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle flips the theme and returns the new mode.
func (t *Theme) Toggle() ThemeMode {
	t.mu.Lock()
	t.dark = !t.dark
	t.mu.Unlock()
	return t.Mode()
}
