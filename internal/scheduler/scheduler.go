// Package scheduler provides an optional in-process cadence for status
// reconciliation. The primary trigger is the external cron-style caller
// hitting the reconcile endpoint; this scheduler exists for deployments
// without one and stays stopped until started via the control endpoint.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"
)

// PassRunner is the dependency that actually does the work. The
// scheduler calls ProcessBatch on a fixed interval while running.
type PassRunner interface {
	ProcessBatch(ctx context.Context) error
}

// Service exposes a small control surface for the scheduler. Start and
// Stop are synchronous; IsRunning reports whether ticks are accepted.
type Service interface {
	Start() error
	Stop() error
	IsRunning() bool
}

// DefaultInterval is used when no custom interval is provided.
const DefaultInterval = 2 * time.Minute

// DefaultPassTimeout bounds a single reconcile pass before it is
// cancelled via context timeout.
const DefaultPassTimeout = 2 * time.Minute

// controlTimeout is how long Start/Stop wait for the control loop to
// acknowledge a command before giving up instead of hanging.
const controlTimeout = 2 * time.Second

type controlOp int

const (
	opStart controlOp = iota
	opStop
	opStatus
)

// controlMsg drives the scheduler's state over the ctrl channel.
type controlMsg struct {
	op   controlOp
	resp chan bool
}

// service owns the internal state and runs the control loop. All
// mutable state lives in the loop goroutine, so no locks are needed.
type service struct {
	runner      PassRunner
	interval    time.Duration
	passTimeout time.Duration
	ctrl        chan controlMsg
}

// New creates a scheduler around the given pass runner. Non-positive
// interval or timeout values fall back to the defaults. The scheduler
// starts in the stopped state.
func New(runner PassRunner, interval, passTimeout time.Duration) Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if passTimeout <= 0 {
		passTimeout = DefaultPassTimeout
	}

	s := &service{
		runner:      runner,
		interval:    interval,
		passTimeout: passTimeout,
		ctrl:        make(chan controlMsg),
	}

	// The control loop lives for the lifetime of the process.
	go s.loop()

	return s
}

// Start tells the scheduler to begin accepting ticks. It blocks until
// the loop acknowledges, or errors if the loop does not respond in time.
func (s *service) Start() error {
	return s.send(opStart, "Start")
}

// Stop tells the scheduler to stop accepting new ticks. If a pass is
// currently running, Stop waits for it to finish (or time out) first.
func (s *service) Stop() error {
	return s.send(opStop, "Stop")
}

func (s *service) send(op controlOp, name string) error {
	resp := make(chan bool)
	msg := controlMsg{op: op, resp: resp}

	select {
	case s.ctrl <- msg:
	case <-time.After(controlTimeout):
		return fmt.Errorf("[Scheduler] %s: control loop not responding", name)
	}

	select {
	case <-resp:
		return nil
	case <-time.After(controlTimeout):
		return fmt.Errorf("[Scheduler] %s: acknowledgement timeout", name)
	}
}

// IsRunning reports whether ticks are currently accepted. It does not
// mean a pass is executing right now.
func (s *service) IsRunning() bool {
	resp := make(chan bool)
	s.ctrl <- controlMsg{op: opStatus, resp: resp}
	return <-resp
}

// loop owns all mutable state and reacts to control messages and ticks.
func (s *service) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	running := false
	inPass := false

	// pendingStop is completed once the current pass finishes, when Stop
	// was called mid-pass.
	var pendingStop chan bool

	for {
		select {
		case msg := <-s.ctrl:
			switch msg.op {
			case opStart:
				if !running {
					log.Printf("[Scheduler] Started (interval=%s, passTimeout=%s)", s.interval, s.passTimeout)
				}
				running = true
				msg.resp <- true

			case opStop:
				if !running && !inPass {
					log.Println("[Scheduler] Stop requested, but already idle.")
					msg.resp <- true
					continue
				}

				log.Println("[Scheduler] Stop requested. Waiting for current pass (if any)...")
				running = false

				if inPass {
					pendingStop = msg.resp
				} else {
					msg.resp <- true
				}

			case opStatus:
				msg.resp <- running
			}

		case <-ticker.C:
			if !running || inPass {
				continue
			}

			inPass = true
			log.Println("[Scheduler] Triggering reconcile pass...")

			ctx, cancel := context.WithTimeout(context.Background(), s.passTimeout)
			err := s.runner.ProcessBatch(ctx)
			cancel()

			if err != nil {
				log.Printf("[Scheduler] Pass failed: %v", err)
			} else {
				log.Println("[Scheduler] Pass completed.")
			}

			inPass = false

			if pendingStop != nil {
				pendingStop <- true
				pendingStop = nil
				log.Println("[Scheduler] Stopped.")
			}
		}
	}
}
