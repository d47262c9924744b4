// Package hotkey delivers the global record-toggle shortcut
// (Ctrl+Shift+Space) as a stream of toggle events.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Toggled() <-chan struct{}
}
