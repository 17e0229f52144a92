package engine

// Mode selects the transfer semantics for a run. It is chosen once at
// start and never changes.
type Mode int

const (
	// ModeCopy copies the source into the destination.
	ModeCopy Mode = iota
	// ModeMove copies, then deletes each source file after a verified copy.
	ModeMove
	// ModeMirror copies, then deletes destination files absent from the source.
	ModeMirror
	// ModeSync is reserved for bidirectional synchronization. Unimplemented.
	ModeSync
)

var modeNames = [...]string{
	ModeCopy:   "copy",
	ModeMove:   "move",
	ModeMirror: "mirror",
	ModeSync:   "sync",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}
