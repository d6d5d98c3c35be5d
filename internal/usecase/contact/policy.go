package contact

import (
	"time"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/pkg/config"
)

// Policy holds the deadline per contact kind and the housekeeping horizons
type Policy struct {
	Ring          time.Duration
	Message       time.Duration
	Video         time.Duration
	StaleHorizon  time.Duration
	ArchiveMinAge time.Duration
	SweepBatch    int
}

// DefaultPolicy returns the stock deadlines
func DefaultPolicy() Policy {
	return Policy{
		Ring:          30 * time.Second,
		Message:       90 * time.Second,
		Video:         90 * time.Second,
		StaleHorizon:  time.Hour,
		ArchiveMinAge: 30 * 24 * time.Hour,
		SweepBatch:    100,
	}
}

// PolicyFromConfig builds a policy from the CONTACT_* settings
func PolicyFromConfig(cfg config.ContactConfig) Policy {
	p := DefaultPolicy()
	p.Ring = cfg.RingDeadline
	p.Message = cfg.MessageDeadline
	p.Video = cfg.VideoDeadline
	p.StaleHorizon = cfg.StaleHorizon
	p.ArchiveMinAge = cfg.ArchiveMinAge
	return p
}

// DeadlineFor returns how long a request of the kind stays pending
func (p Policy) DeadlineFor(kind entities.ContactKind) time.Duration {
	switch kind {
	case entities.ContactKindRing:
		return p.Ring
	case entities.ContactKindMessage:
		return p.Message
	case entities.ContactKindVideo:
		return p.Video
	}
	return p.Ring
}
