//go:build !typejson_deadlock

// Package sync aliases the lock types used by the codec cache. Building with
// -tags typejson_deadlock swaps in go-deadlock's detectors.
package sync

import "sync"

type (
	Mutex   = sync.Mutex
	RWMutex = sync.RWMutex
	Once    = sync.Once
)
