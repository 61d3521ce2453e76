package ats

import "sync/atomic"

// Diagnostics is a point-in-time copy of an engine's counters.
type Diagnostics struct {
	Clamped      uint64 // values forced into range (negative or above-Nyquist frequency)
	NonFinite    uint64 // NaN or infinite values replaced during rendering
	OutOfRange   uint64 // control steps whose position fell outside the document
	BlockClamped uint64 // render requests longer than MaxBlockSize
	Blocks       uint64 // blocks rendered
	Activations  uint64 // voices that started an attack
	Releases     uint64 // voices that started a release
}

// counters are the engine's live counters. The render path accumulates a
// Diagnostics value per block and publishes it once.
type counters struct {
	clamped      atomic.Uint64
	nonFinite    atomic.Uint64
	outOfRange   atomic.Uint64
	blockClamped atomic.Uint64
	blocks       atomic.Uint64
	activations  atomic.Uint64
	releases     atomic.Uint64
}

func (c *counters) add(d *Diagnostics) {
	if d.Clamped != 0 {
		c.clamped.Add(d.Clamped)
	}
	if d.NonFinite != 0 {
		c.nonFinite.Add(d.NonFinite)
	}
	if d.OutOfRange != 0 {
		c.outOfRange.Add(d.OutOfRange)
	}
	if d.BlockClamped != 0 {
		c.blockClamped.Add(d.BlockClamped)
	}
	if d.Blocks != 0 {
		c.blocks.Add(d.Blocks)
	}
	if d.Activations != 0 {
		c.activations.Add(d.Activations)
	}
	if d.Releases != 0 {
		c.releases.Add(d.Releases)
	}
}

func (c *counters) snapshot() Diagnostics {
	return Diagnostics{
		Clamped:      c.clamped.Load(),
		NonFinite:    c.nonFinite.Load(),
		OutOfRange:   c.outOfRange.Load(),
		BlockClamped: c.blockClamped.Load(),
		Blocks:       c.blocks.Load(),
		Activations:  c.activations.Load(),
		Releases:     c.releases.Load(),
	}
}

func (c *counters) reset() {
	c.clamped.Store(0)
	c.nonFinite.Store(0)
	c.outOfRange.Store(0)
	c.blockClamped.Store(0)
	c.blocks.Store(0)
	c.activations.Store(0)
	c.releases.Store(0)
}
