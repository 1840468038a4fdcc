package chip8

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// TimerHz is the fixed cadence of the delay and sound timers.
const TimerHz = 60

// DefaultInstructionsPerTick approximates the ~500 instructions per second
// the original interpreter managed, spread over the 60Hz timer cadence.
const DefaultInstructionsPerTick = 9

// Scheduler paces a machine. The hardware timers always tick at 60Hz;
// instruction throughput is a separate knob, so games can run smoothly
// without speeding up their timers.
type Scheduler struct {
	c      *Chip8
	ipt    int
	logger *log.Logger

	pauseReq atomic.Int32
}

func NewScheduler(c *Chip8, instructionsPerTick int, logger *log.Logger) *Scheduler {
	if instructionsPerTick <= 0 {
		instructionsPerTick = DefaultInstructionsPerTick
	}
	return &Scheduler{
		c:      c,
		ipt:    instructionsPerTick,
		logger: logger,
	}
}

// TogglePause requests a pause flip. Safe to call from any goroutine; the
// flip is applied on the goroutine driving RunTick at the next frame, so the
// machine state itself is only ever touched from there.
func (s *Scheduler) TogglePause() {
	s.pauseReq.Add(1)
}

// RunTick executes one timer frame: the configured number of instructions
// followed by one timer tick. Invalid opcodes are logged and skipped; the
// first fatal error is returned. A paused machine is left alone, timers
// included.
func (s *Scheduler) RunTick() error {
	if s.pauseReq.Swap(0)%2 == 1 {
		s.c.TogglePause()
	}
	if s.c.State() == Paused {
		return nil
	}

	for i := 0; i < s.ipt; i++ {
		err := s.c.Step()
		if err == nil {
			continue
		}

		var inv *InvalidOpcodeError
		if errors.As(err, &inv) {
			s.logger.Warn("Skipping invalid opcode",
				log.Hex("opcode", inv.Word),
				log.Int("total", s.c.InvalidOps()))
			continue
		}
		return err
	}

	s.c.Tick()
	return nil
}

// Run drives the machine at the 60Hz cadence until the context is cancelled
// or the machine halts. onFrame, if non-nil, runs after every timer frame so
// the host can repaint.
func (s *Scheduler) Run(ctx context.Context, onFrame func()) error {
	ticker := time.NewTicker(time.Second / TimerHz)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunTick(); err != nil {
				s.logger.Error("Machine halted", log.Err(err))
				return err
			}
			if onFrame != nil {
				onFrame()
			}
		}
	}
}
