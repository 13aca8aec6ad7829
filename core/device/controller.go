// Package device wires the dispatcher and schedule evaluator behind the
// shadow handler contract and runs the cooperative tick loop.
package device

import (
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/core/shadow"
)

// Dispenser is the part of the dispatcher the controller routes to.
type Dispenser interface {
	HandleCommand(cmd model.Command)
	HandleDesiredColor(color string)
}

// Scheduler is the part of the evaluator the controller routes to.
type Scheduler interface {
	ApplyDelta(d model.DesiredDelta)
	Tick()
}

// Controller routes decoded shadow traffic to the dispatcher and the
// schedule evaluator.
type Controller struct {
	dispenser Dispenser
	scheduler Scheduler
}

var _ shadow.Handler = (*Controller)(nil)

// NewController creates a Controller.
func NewController(d Dispenser, s Scheduler) *Controller {
	return &Controller{dispenser: d, scheduler: s}
}

func (c *Controller) HandleDelta(d model.DesiredDelta) { c.scheduler.ApplyDelta(d) }
func (c *Controller) HandleDesiredColor(color string)  { c.dispenser.HandleDesiredColor(color) }
func (c *Controller) HandleCommand(cmd model.Command)   { c.dispenser.HandleCommand(cmd) }
