// Package event defines the progress vocabulary emitted by the transfer
// engine. Every state-machine transition produces exactly one event; the
// engine is single-threaded, so events are delivered synchronously to a
// Reporter rather than through a channel.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	DirCreated Type = iota + 1
	ComparePair
	DeleteDest
	CopyFile
	VerifyDest
	DeleteSource
	DeleteStale
	FileSkipped
	FileDone
	Paused
	Resumed
	PauseRequested
	RestPause
	ByteMilestone
)

var typeNames = [...]string{
	DirCreated:     "DirCreated",
	ComparePair:    "ComparePair",
	DeleteDest:     "DeleteDest",
	CopyFile:       "CopyFile",
	VerifyDest:     "VerifyDest",
	DeleteSource:   "DeleteSource",
	DeleteStale:    "DeleteStale",
	FileSkipped:    "FileSkipped",
	FileDone:       "FileDone",
	Paused:         "Paused",
	Resumed:        "Resumed",
	PauseRequested: "PauseRequested",
	RestPause:      "RestPause",
	ByteMilestone:  "ByteMilestone",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single progress notification.
type Event struct {
	Type   Type
	Src    string        // source path, where applicable
	Dst    string        // destination path, where applicable
	Size   int64         // file size or byte total
	Reason string        // DeleteDest: which criteria differed
	Pause  time.Duration // RestPause/ByteMilestone: rest duration
	Files  int           // RestPause: files completed since last rest
}

// Reporter receives events as they happen. Implementations must be fast;
// the engine blocks on every Emit.
type Reporter interface {
	Emit(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

func (f ReporterFunc) Emit(e Event) { f(e) }

// Discard is a Reporter that drops all events.
var Discard Reporter = ReporterFunc(func(Event) {})
