package scheduler

// EventType identifies a scheduled event. Only one event of each type
// can be scheduled at a time.
type EventType int

const (
	// Deadline marks the end of a bounded run.
	Deadline EventType = iota
	// FrameLimit ends a frame run when no frame is produced.
	FrameLimit

	eventTypes
)

var eventNames = [eventTypes]string{
	Deadline:   "deadline",
	FrameLimit: "frame limit",
}

func (t EventType) String() string {
	if t < 0 || t >= eventTypes {
		return "unknown"
	}
	return eventNames[t]
}

type Event struct {
	cycle     uint64
	eventType EventType
	next      *Event
	scheduled bool
}

func (e *Event) Reset() {
	e.cycle = 0
	e.next = nil
	e.scheduled = false
}
