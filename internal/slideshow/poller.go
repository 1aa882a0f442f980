package slideshow

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Poller runs a job on a fixed interval. Runs never overlap: a tick that
// arrives while the previous run is still busy is skipped.
type Poller struct {
	cron *cron.Cron
}

// NewPoller schedules job every interval
func NewPoller(interval time.Duration, job func()) (*Poller, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), job); err != nil {
		return nil, fmt.Errorf("schedule poll: %w", err)
	}
	return &Poller{cron: c}, nil
}

func (p *Poller) Start() {
	p.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish
func (p *Poller) Stop() error {
	ctx := p.cron.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(10 * time.Second):
		return errors.New("poller stop timeout")
	}
}
