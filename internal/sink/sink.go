// Package sink delivers poller snapshots to their destinations.
package sink

import (
	"errors"

	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
)

// Sink receives one snapshot per link per polling cycle
type Sink interface {
	Write(snap *model.Snapshot) error
	Close() error
}

// Multi fans a snapshot out to several sinks. A failing sink is logged and
// does not stop the others.
type Multi []Sink

func (m Multi) Write(snap *model.Snapshot) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(snap); err != nil {
			log.Error("Sink write failed", "link", snap.Link, "snapshot", snap.ID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
