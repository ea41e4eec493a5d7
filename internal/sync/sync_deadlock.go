//go:build typejson_deadlock

// Package sync aliases the lock types used by the codec cache. Building with
// -tags typejson_deadlock swaps in go-deadlock's detectors.
package sync

import "github.com/sasha-s/go-deadlock"

type (
	Mutex   = deadlock.Mutex
	RWMutex = deadlock.RWMutex
	Once    = deadlock.Once
)
