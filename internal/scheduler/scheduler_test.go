package scheduler

import (
	"strings"
	"testing"
)

type recorder struct {
	log *[]string
}

type testCPU struct {
	recorder
	cost        uint8
	interrupt   bool
	doubleSpeed bool
	steps       int
}

func (c *testCPU) ServiceInterrupt() (uint8, bool) {
	if !c.interrupt {
		return 0, false
	}
	c.interrupt = false
	*c.log = append(*c.log, "irq")
	return 20, true
}

func (c *testCPU) Step() uint8 {
	c.steps++
	*c.log = append(*c.log, "cpu")
	return c.cost
}

func (c *testCPU) DoubleSpeed() bool { return c.doubleSpeed }

type testTicker struct {
	recorder
	name  string
	ticks int
}

func (t *testTicker) Tick() {
	t.ticks++
	*t.log = append(*t.log, t.name)
}

type testStall struct {
	blocks int
}

func (s *testStall) IsCopying() bool { return s.blocks > 0 }
func (s *testStall) CopyBlock()      { s.blocks-- }

type machine struct {
	*Scheduler
	cpu                                *testCPU
	dma, timer, serial, sound, display *testTicker
	log                                []string
}

func newMachine(cost uint8) *machine {
	m := &machine{}
	r := recorder{log: &m.log}
	m.cpu = &testCPU{recorder: r, cost: cost}
	ticker := func(name string) *testTicker {
		return &testTicker{recorder: r, name: name}
	}
	m.dma, m.timer, m.serial, m.sound, m.display = ticker("dma"), ticker("timer"), ticker("serial"), ticker("sound"), ticker("display")
	m.Scheduler = NewScheduler(Components{
		CPU:     m.cpu,
		DMA:     m.dma,
		Timer:   m.timer,
		Serial:  m.serial,
		Sound:   m.sound,
		Display: m.display,
	})
	return m
}

func TestScheduler_Order(t *testing.T) {
	m := newMachine(4)
	m.Tick()
	want := "cpu dma timer serial sound display"
	if got := strings.Join(m.log, " "); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestScheduler_WaitCounter(t *testing.T) {
	for _, tt := range []struct {
		name  string
		cost  uint8
		ticks int
		steps int
	}{
		{"NOP", 4, 4, 1},
		{"NOP x2", 4, 5, 2},
		{"LD BC, d16", 12, 12, 1},
		{"LD BC, d16 x2", 12, 13, 2},
		{"CALL", 24, 48, 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(tt.cost)
			for i := 0; i < tt.ticks; i++ {
				m.Tick()
			}
			if m.cpu.steps != tt.steps {
				t.Errorf("expected %d steps, got %d", tt.steps, m.cpu.steps)
			}
			if m.timer.ticks != tt.ticks || m.display.ticks != tt.ticks {
				t.Errorf("collaborators ticked %d/%d times, expected %d", m.timer.ticks, m.display.ticks, tt.ticks)
			}
		})
	}
}

func TestScheduler_Interrupt(t *testing.T) {
	m := newMachine(4)
	m.cpu.interrupt = true
	if cycles := m.StepInstruction(); cycles != 20 {
		t.Errorf("expected interrupt dispatch to take 20 cycles, got %d", cycles)
	}
	if m.cpu.steps != 0 {
		t.Errorf("expected no instruction during interrupt dispatch")
	}
	if cycles := m.StepInstruction(); cycles != 4 || m.cpu.steps != 1 {
		t.Errorf("expected a 4 cycle instruction after the dispatch, got %d", cycles)
	}
}

func TestScheduler_DoubleSpeed(t *testing.T) {
	m := newMachine(4)
	m.cpu.doubleSpeed = true
	for i := 0; i < 100; i++ {
		m.Tick()
	}
	if m.timer.ticks != 100 || m.serial.ticks != 100 || m.dma.ticks != 100 {
		t.Errorf("CPU clocked hardware must tick every cycle")
	}
	if m.display.ticks != 50 || m.sound.ticks != 50 {
		t.Errorf("expected display and sound to tick 50 times, got %d/%d", m.display.ticks, m.sound.ticks)
	}
}

func TestScheduler_Stall(t *testing.T) {
	m := newMachine(4)
	stall := &testStall{blocks: 2}
	m.VRAMDMA = stall
	for i := 0; i < 2*blockCycles; i++ {
		m.Tick()
	}
	if m.cpu.steps != 0 {
		t.Errorf("expected CPU to be stalled, ran %d steps", m.cpu.steps)
	}
	if stall.blocks != 0 {
		t.Errorf("expected every block copied, %d remaining", stall.blocks)
	}
	m.Tick()
	if m.cpu.steps != 1 {
		t.Errorf("expected CPU to resume")
	}
}

func TestScheduler_Events(t *testing.T) {
	m := newMachine(4)
	var fired []string
	m.RegisterEvent(Deadline, func() { fired = append(fired, "deadline") })
	m.RegisterEvent(FrameLimit, func() { fired = append(fired, "frame limit") })

	m.ScheduleEvent(Deadline, 10)
	m.ScheduleEvent(FrameLimit, 5)
	for i := 0; i < 5; i++ {
		m.Tick()
	}
	if len(fired) != 1 || fired[0] != "frame limit" {
		t.Fatalf("expected frame limit after 5 cycles, got %v", fired)
	}
	if !m.Scheduled(Deadline) || m.Scheduled(FrameLimit) {
		t.Errorf("unexpected pending events: %s", m)
	}

	// rescheduling replaces the pending event
	m.ScheduleEvent(Deadline, 20)
	for i := 0; i < 19; i++ {
		m.Tick()
	}
	if len(fired) != 1 {
		t.Fatalf("deadline fired early: %v", fired)
	}
	m.Tick()
	if len(fired) != 2 || fired[1] != "deadline" {
		t.Errorf("expected deadline, got %v", fired)
	}

	m.ScheduleEvent(Deadline, 1)
	m.DescheduleEvent(Deadline)
	m.Tick()
	if len(fired) != 2 {
		t.Errorf("descheduled event fired: %v", fired)
	}
}
