package telegram

import (
	"context"
	"sync"
)

// Dry only logs the messages it is asked to send.
type Dry struct {
	log  func(v ...interface{})
	lock sync.Mutex
	sent []string
}

func NewDry(log func(v ...interface{})) *Dry {
	return &Dry{log: log}
}

func (d *Dry) Send(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.lock.Lock()
	d.sent = append(d.sent, msg)
	d.lock.Unlock()
	d.log("dry message:", msg)
	return nil
}

// Sent returns the messages sent so far.
func (d *Dry) Sent() []string {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]string(nil), d.sent...)
}
