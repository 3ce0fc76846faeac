// Package testerr helps tests simulate failing dependencies.
package testerr

import "errors"

// Err is the error returned by failing test dependencies.
var Err = errors.New("failing test dependency")

// Calltracker counts calls to a dependency and decides which of them fail.
// The zero value never fails.
type Calltracker struct {
	call   int
	err    error
	failAt int
	// sticky makes every call from failAt onwards fail, instead of
	// just the one.
	sticky bool
	armed  bool
}

// NewFailingDeps returns trackers that fail at every point in a call
// sequence of expectCalls calls. For each position there are two variants:
// a single failure with all later calls succeeding, and a failure that
// persists for the rest of the sequence.
func NewFailingDeps(err error, expectCalls int) []Calltracker {
	trackers := make([]Calltracker, 0, expectCalls*2)
	for i := 0; i < expectCalls; i++ {
		trackers = append(trackers,
			Calltracker{err: err, failAt: i, sticky: true, armed: true},
			Calltracker{err: err, failAt: i, sticky: false, armed: true},
		)
	}

	return trackers
}

func (ct *Calltracker) next() error {
	if !ct.armed {
		return nil
	}

	i := ct.call
	ct.call++

	if i == ct.failAt || (ct.sticky && i > ct.failAt) {
		return ct.err
	}

	return nil
}

// MaybeFailErrFunc runs f unless the tracker decides this call fails.
func MaybeFailErrFunc(ct *Calltracker, f func() error) error {
	if err := ct.next(); err != nil {
		return err
	}

	return f()
}

// MaybeFail runs f unless the tracker decides this call fails.
func MaybeFail[T any](ct *Calltracker, f func() (T, error)) (T, error) {
	if err := ct.next(); err != nil {
		var zero T
		return zero, err
	}

	return f()
}
