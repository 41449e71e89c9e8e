package kafkaconsumer

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// revisionDedupe remembers the last applied revision per zone.
type revisionDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func newRevisionDedupe(size int) *revisionDedupe {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, uint64](size)
	return &revisionDedupe{lru: c}
}

// stale reports whether rev is not newer than the last applied revision.
func (d *revisionDedupe) stale(zone string, rev uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lru.Get(zone)
	return ok && rev <= last
}

func (d *revisionDedupe) record(zone string, rev uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(zone); ok && rev <= last {
		return
	}
	d.lru.Add(zone, rev)
}
