package tui

import "time"

// Option configures a Model at construction time.
type Option func(*Model)

// WithClock overrides the time source, used by tests and calendar rendering.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithClipboard overrides the clipboard write function.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.clipboardWrite = write
		}
	}
}
