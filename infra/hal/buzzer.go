package hal

import (
	"sync"
	"time"

	corehal "github.com/kilianp07/pillbox/core/hal"
)

// Buzzer drives a digital output high for a bounded duration. It never
// blocks; Poll lowers the output once the deadline passed.
type Buzzer struct {
	mu     sync.Mutex
	now    func() time.Time
	set    func(high bool)
	active bool
	end    time.Time
}

var _ corehal.Indicator = (*Buzzer)(nil)

// NewBuzzer returns a buzzer writing its level through set. A nil set
// discards the level; now defaults to time.Now.
func NewBuzzer(set func(high bool), now func() time.Time) *Buzzer {
	if set == nil {
		set = func(bool) {}
	}
	if now == nil {
		now = time.Now
	}
	return &Buzzer{set: set, now: now}
}

// SoundFor raises the output until d elapsed. A new call replaces the
// previous deadline.
func (b *Buzzer) SoundFor(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.set(true)
	b.active = true
	b.end = b.now().Add(d)
}

// Poll lowers the output when the deadline passed.
func (b *Buzzer) Poll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active && !b.now().Before(b.end) {
		b.set(false)
		b.active = false
	}
}

// Active reports whether the buzzer is sounding.
func (b *Buzzer) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}
