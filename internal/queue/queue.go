// Package queue drains the catalog's queued rows one transfer at a time,
// in row order.
package queue

import (
	"github.com/google/uuid"

	"github.com/attache-dl/attache/internal/catalog"
	"github.com/attache-dl/attache/internal/download"
)

// StartFunc launches the transfer for att, reporting through tx. The
// controller calls it at most once per transfer; implementations spawn
// the actual work and return immediately.
type StartFunc func(id uuid.UUID, att catalog.Attachment, tx *download.Sender)

// Transfer is one in-flight download. The ID ties late events back to
// the transfer that produced them.
type Transfer struct {
	ID     uuid.UUID
	Index  int
	Events *download.Receiver
}

// Controller enforces the single-flight rule: at most one transfer runs,
// and finishing one immediately starts the lowest queued row. It is not
// safe for concurrent use; the interactive loop owns it.
type Controller struct {
	catalog *catalog.Catalog
	start   StartFunc
	active  *Transfer
}

func NewController(cat *catalog.Catalog, start StartFunc) *Controller {
	return &Controller{catalog: cat, start: start}
}

// StartNext launches the lowest queued row and returns its transfer. It
// returns nil while a transfer is already running or nothing is queued.
func (c *Controller) StartNext() *Transfer {
	if c.active != nil {
		return nil
	}
	i, ok := c.catalog.NextQueued()
	if !ok {
		return nil
	}
	tx, rx := download.NewWatch(download.Starting())
	t := &Transfer{ID: uuid.New(), Index: i, Events: rx}
	c.active = t
	c.start(t.ID, c.catalog.At(i), tx)
	return t
}

// OnEvent folds evt into the active transfer's row. A terminal event
// retires the transfer and chains into the next queued row; the returned
// transfer is non-nil only when such a follow-up was started.
func (c *Controller) OnEvent(evt download.Event) *Transfer {
	if c.active == nil {
		return nil
	}
	c.catalog.Apply(c.active.Index, evt)
	if !evt.Terminal() {
		return nil
	}
	c.active = nil
	return c.StartNext()
}

// Active returns the in-flight transfer, or nil.
func (c *Controller) Active() *Transfer {
	return c.active
}

// CancelActive abandons the in-flight transfer. Closing the receiver is
// the abort signal the transfer polls for; the row keeps its last state.
func (c *Controller) CancelActive() {
	if c.active == nil {
		return
	}
	c.active.Events.Close()
	c.active = nil
}
