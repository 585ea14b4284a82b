package scan

// Event is the interface implemented by all traversal events.
//
// Events are observability only: emission is best-effort and never changes
// traversal results.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for receiving traversal events.
type EventEmitter interface {
	Emit(event Event)
}

// Started is emitted when a traversal begins.
type Started struct {
	Root string
	// Entries is the immediate entry count at the root, known before any
	// recursion happens.
	Entries int
}

func (Started) isEvent() {}

// Progress is emitted periodically during large sequential scans. Only roots
// whose immediate entry count exceeds the progress threshold produce these.
type Progress struct {
	Root    string
	Scanned int
	Current string
}

func (Progress) isEvent() {}

// Complete is emitted when a traversal finishes.
type Complete struct {
	Root    string
	Scanned int
}

func (Complete) isEvent() {}
