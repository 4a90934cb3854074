package inject

import (
	"time"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"

	"github.com/samuelgr/Hookshot-sub001/internal/logger"
)

// Options tunes the runtime behaviour of one injection, the zero
// value takes the documented defaults.
type Options struct {
	// SyncDeadline bounds the whole wait for the payload to publish
	// its status through the synchronisation word.
	SyncDeadline time.Duration `default:"10s"`

	// PollInterval is the base delay between two samples of the
	// remote process, every wait adds a random jitter of up to half
	// the interval.
	PollInterval time.Duration `default:"10ms"`

	// AdvanceAttempts bounds the resume and suspend cycles used to
	// let the loader of a fresh process publish the image base.
	AdvanceAttempts int `default:"8"`

	// UnsetAttempts bounds the samples of the instruction pointer
	// while waiting for a released thread to reach the park.
	UnsetAttempts int `default:"50"`

	// Logger receives step by step progress, nil discards it.
	Logger logger.Logger
}

// normalized is used to build a copy with every absent field set to
// its default.
func (opts *Options) normalized() (*Options, error) {
	cp := Options{}
	if opts != nil {
		cp = *opts
	}
	err := defaults.Set(&cp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set default options")
	}
	if cp.Logger == nil {
		cp.Logger = logger.Discard
	}
	return &cp, nil
}
