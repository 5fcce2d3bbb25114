package port

// Navigator moves the client to another route
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route string)

// Navigate calls f(route)
func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

// FileInput is the proof file selection control
type FileInput interface {
	Value() string
	Clear()
}

// MessageDisplay shows or hides a user-facing message
type MessageDisplay interface {
	Show(text string)
	Hide()
}

// PreviewSurface displays a bill's proof
type PreviewSurface interface {
	Open(fileURL string, broken bool)
	Close()
}

// Clickable is a control that accepts a click handler
type Clickable interface {
	OnClick(handler func())
}
