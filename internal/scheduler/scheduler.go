// Package scheduler drives the machine one clock cycle at a time. It
// owns the wait counter that paces the CPU: when the counter reaches
// zero the CPU services an interrupt or executes an instruction and
// the counter is reloaded with its cost. Every cycle the collaborators
// are then ticked in a fixed order.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/thelolagemann/gbcore/internal/types"
)

// Processor is the CPU as seen by the scheduler.
type Processor interface {
	ServiceInterrupt() (uint8, bool)
	Step() uint8
	DoubleSpeed() bool
}

// Ticker is hardware advanced once per clock cycle.
type Ticker interface {
	Tick()
}

// Stall is a transfer that holds the CPU while it copies, such as the
// CGB VRAM DMA.
type Stall interface {
	IsCopying() bool
	CopyBlock()
}

// Components are the collaborators of the scheduler. Ticker fields
// are ticked in the order they are declared. VRAMDMA may be nil.
type Components struct {
	CPU Processor

	DMA     Ticker
	Timer   Ticker
	Serial  Ticker
	Sound   Ticker
	Display Ticker

	VRAMDMA Stall
}

const (
	// blockCycles is the cost of copying a 16 byte block of VRAM DMA
	// in normal speed.
	blockCycles = 32
)

// Scheduler is the cycle scheduler.
//
// Alongside the wait counter it keeps a list of events, sorted by the
// cycle at which they should be executed, which lets the host bound
// runs without checking a condition every cycle.
type Scheduler struct {
	Components

	cycles  uint64
	counter uint

	root          *Event
	eventHandlers [eventTypes]func()
	events        [eventTypes]*Event
	nextEventAt   uint64
}

// NewScheduler returns a scheduler driving c.
func NewScheduler(c Components) *Scheduler {
	s := &Scheduler{
		Components: c,
	}
	for i := range s.events {
		s.events[i] = &Event{eventType: EventType(i)}
	}
	return s
}

// Cycle returns the number of clock cycles elapsed.
func (s *Scheduler) Cycle() uint64 {
	return s.cycles
}

// Boundary returns true if the next cycle starts a new instruction
// or interrupt dispatch.
func (s *Scheduler) Boundary() bool {
	return s.counter == 0
}

// Tick advances the machine by a single clock cycle.
func (s *Scheduler) Tick() {
	if s.counter == 0 {
		s.counter = s.dispatch()
	}
	s.counter--
	s.cycles++

	s.DMA.Tick()
	s.Timer.Tick()
	s.Serial.Tick()

	// sound and display run on the fixed 4 MiHz clock
	if !s.CPU.DoubleSpeed() || s.cycles&1 == 0 {
		s.Sound.Tick()
		s.Display.Tick()
	}

	if s.root != nil && s.cycles >= s.nextEventAt {
		s.doEvents()
	}
}

// dispatch runs whatever owns the CPU for the next span of cycles,
// returning its cost.
func (s *Scheduler) dispatch() uint {
	if s.VRAMDMA != nil && s.VRAMDMA.IsCopying() {
		s.VRAMDMA.CopyBlock()
		if s.CPU.DoubleSpeed() {
			return blockCycles * 2
		}
		return blockCycles
	}

	if cycles, ok := s.CPU.ServiceInterrupt(); ok {
		return uint(cycles)
	}
	return uint(s.CPU.Step())
}

// StepInstruction ticks until the instruction (or interrupt dispatch)
// in progress has completed, starting a new one if none is. It returns
// the number of cycles elapsed.
func (s *Scheduler) StepInstruction() uint64 {
	start := s.cycles
	s.Tick()
	for s.counter > 0 {
		s.Tick()
	}
	return s.cycles - start
}

// RegisterEvent registers the function called when an event of the
// given type falls due.
func (s *Scheduler) RegisterEvent(eventType EventType, fn func()) {
	s.eventHandlers[eventType] = fn
}

// ScheduleEvent schedules an event to be executed the given number of
// cycles from now, replacing any event of the same type.
func (s *Scheduler) ScheduleEvent(eventType EventType, cycles uint64) {
	s.DescheduleEvent(eventType)

	this := s.events[eventType]
	this.cycle = s.cycles + cycles
	this.scheduled = true

	if s.root == nil || this.cycle < s.root.cycle {
		this.next = s.root
		s.root = this
		s.nextEventAt = this.cycle
		return
	}

	event := s.root
	for event.next != nil && event.next.cycle <= this.cycle {
		event = event.next
	}
	this.next = event.next
	event.next = this
}

// DescheduleEvent removes the event of the given type, if scheduled.
func (s *Scheduler) DescheduleEvent(eventType EventType) {
	this := s.events[eventType]
	if !this.scheduled {
		return
	}

	var prev *Event
	for event := s.root; event != nil; prev, event = event, event.next {
		if event != this {
			continue
		}
		if prev == nil {
			s.root = event.next
			if s.root != nil {
				s.nextEventAt = s.root.cycle
			}
		} else {
			prev.next = event.next
		}
		break
	}
	this.Reset()
}

// Scheduled returns true if an event of the given type is pending.
func (s *Scheduler) Scheduled(eventType EventType) bool {
	return s.events[eventType].scheduled
}

func (s *Scheduler) doEvents() {
	for s.root != nil && s.root.cycle <= s.cycles {
		event := s.root
		s.root = event.next
		event.Reset()

		if fn := s.eventHandlers[event.eventType]; fn != nil {
			fn()
		}
	}
	if s.root != nil {
		s.nextEventAt = s.root.cycle
	}
}

var _ types.Stater = (*Scheduler)(nil)

func (s *Scheduler) Save(st *types.State) {
	st.Write64(s.cycles)
	st.Write16(uint16(s.counter))
}

func (s *Scheduler) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cycle %d, wait %d", s.cycles, s.counter)
	for event := s.root; event != nil; event = event.next {
		fmt.Fprintf(&b, " -> %s@%d", event.eventType, event.cycle)
	}
	return b.String()
}
