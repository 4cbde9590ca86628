package hal

import (
	"fmt"
	"sync"
)

// GICv1 distributor register offsets.
const (
	gicdCTLR       = 0x000
	gicdISENABLER  = 0x100 // 0x100-0x17C set-enable
	gicdICENABLER  = 0x180 // 0x180-0x1FC clear-enable
	gicdISPENDR    = 0x200 // 0x200-0x27C set-pending
	gicdICPENDR    = 0x280 // 0x280-0x2FC clear-pending
	gicdIPRIORITYR = 0x400 // 0x400-0x7F8 priority, byte per line
	gicdITARGETSR  = 0x800 // 0x800-0xBF8 CPU targets, byte per line
)

// GICv1 CPU interface register offsets.
const (
	giccCTLR = 0x00
	giccPMR  = 0x04
	giccIAR  = 0x0C
	giccEOIR = 0x10
)

const (
	gicMaxLines   = 1024
	gicIDMask     = 0x3FF
	gicCtrlEnable = 1 << 0
)

// GIC models a GICv1 distributor plus one CPU interface.
//
// Devices latch lines pending through SetPending; the executing context
// acknowledges and retires them through the IntController operations, which
// are thin wrappers over the register block exactly like the hardware's.
type GIC struct {
	mu sync.Mutex

	distCtl  uint32
	cpuCtl   uint32
	prioMask uint32

	enable  [32]uint32
	pending [32]uint32
	prio    [256]uint32
	target  [256]uint32

	// active is the acknowledged-but-not-retired interrupt, IRQSpurious
	// when none. A mismatched end-of-interrupt leaves it latched, which
	// blocks further acknowledges; that is the modelled equivalent of the
	// undefined hardware state the contract warns about.
	active uint32

	raised chan struct{}
}

// NewGIC returns a controller with everything disabled, as after reset.
func NewGIC() *GIC {
	return &GIC{active: IRQSpurious, raised: make(chan struct{}, 1)}
}

// Init enables all interrupt priorities, interrupt forwarding to the CPU
// interface, and the distributor.
func (g *GIC) Init() {
	g.WriteCPU(giccPMR, 0xFFFF)
	g.WriteCPU(giccCTLR, gicCtrlEnable)
	g.WriteDist(gicdCTLR, gicCtrlEnable)
}

// Enable marks a line eligible to assert and routes it to CPU interface 0.
// Idempotent. An out-of-range line is a configuration error and panics.
func (g *GIC) Enable(line uint32) {
	if line >= gicMaxLines {
		panic(fmt.Sprintf("hal: gic enable of invalid line %d", line))
	}

	reg := line / 32
	bit := line % 32
	v := g.ReadDist(gicdISENABLER + reg*4)
	v |= 1 << bit
	g.WriteDist(gicdISENABLER+reg*4, v)

	// Forward to CPU interface 0: one byte lane per line, four per register.
	reg = line / 4
	bit = (line % 4) * 8
	v = g.ReadDist(gicdITARGETSR + reg*4)
	v |= 1 << bit
	g.WriteDist(gicdITARGETSR+reg*4, v)
}

// Acknowledge returns the identifier of the highest-priority pending enabled
// interrupt and marks it active, or IRQSpurious when nothing is deliverable.
func (g *GIC) Acknowledge() uint32 {
	return g.ReadCPU(giccIAR) & gicIDMask
}

// EndOfInterrupt retires an acknowledged interrupt. The identifier must be
// the one Acknowledge returned.
func (g *GIC) EndOfInterrupt(id uint32) {
	g.WriteCPU(giccEOIR, id&gicIDMask)
}

// SetPending latches a line pending. Called by device models when their
// interrupt condition asserts.
func (g *GIC) SetPending(line uint32) {
	if line >= gicMaxLines {
		panic(fmt.Sprintf("hal: gic pending of invalid line %d", line))
	}
	g.WriteDist(gicdISPENDR+(line/32)*4, 1<<(line%32))
}

// PendingIRQ reports whether a deliverable interrupt exists: the controller
// is enabled and some line is pending, enabled and routed to this CPU.
func (g *GIC) PendingIRQ() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deliverableLocked() != IRQSpurious
}

// Raised is poked whenever a deliverable interrupt appears. It backs the
// machine's wait-for-interrupt.
func (g *GIC) Raised() <-chan struct{} { return g.raised }

// ReadDist reads a 32-bit distributor register.
func (g *GIC) ReadDist(off uint32) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case off == gicdCTLR:
		return g.distCtl
	case off >= gicdISENABLER && off < gicdISENABLER+0x80:
		return g.enable[(off-gicdISENABLER)/4]
	case off >= gicdICENABLER && off < gicdICENABLER+0x80:
		return g.enable[(off-gicdICENABLER)/4]
	case off >= gicdISPENDR && off < gicdISPENDR+0x80:
		return g.pending[(off-gicdISPENDR)/4]
	case off >= gicdICPENDR && off < gicdICPENDR+0x80:
		return g.pending[(off-gicdICPENDR)/4]
	case off >= gicdIPRIORITYR && off < gicdIPRIORITYR+0x3FC:
		return g.prio[(off-gicdIPRIORITYR)/4]
	case off >= gicdITARGETSR && off < gicdITARGETSR+0x3FC:
		return g.target[(off-gicdITARGETSR)/4]
	}
	return 0
}

// WriteDist writes a 32-bit distributor register.
func (g *GIC) WriteDist(off, v uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case off == gicdCTLR:
		g.distCtl = v & gicCtrlEnable
	case off >= gicdISENABLER && off < gicdISENABLER+0x80:
		g.enable[(off-gicdISENABLER)/4] |= v
	case off >= gicdICENABLER && off < gicdICENABLER+0x80:
		g.enable[(off-gicdICENABLER)/4] &^= v
	case off >= gicdISPENDR && off < gicdISPENDR+0x80:
		g.pending[(off-gicdISPENDR)/4] |= v
	case off >= gicdICPENDR && off < gicdICPENDR+0x80:
		g.pending[(off-gicdICPENDR)/4] &^= v
	case off >= gicdIPRIORITYR && off < gicdIPRIORITYR+0x3FC:
		g.prio[(off-gicdIPRIORITYR)/4] = v
	case off >= gicdITARGETSR && off < gicdITARGETSR+0x3FC:
		g.target[(off-gicdITARGETSR)/4] = v
	}
	g.pokeLocked()
}

// ReadCPU reads a 32-bit CPU interface register. Reading IAR performs the
// acknowledge: the winning line goes pending -> active.
func (g *GIC) ReadCPU(off uint32) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch off {
	case giccCTLR:
		return g.cpuCtl
	case giccPMR:
		return g.prioMask
	case giccIAR:
		if g.active != IRQSpurious {
			return IRQSpurious
		}
		id := g.deliverableLocked()
		if id == IRQSpurious {
			return IRQSpurious
		}
		g.pending[id/32] &^= 1 << (id % 32)
		g.active = id
		return id
	}
	return 0
}

// WriteCPU writes a 32-bit CPU interface register. Writing EOIR retires the
// active interrupt; a mismatched identifier leaves it latched.
func (g *GIC) WriteCPU(off, v uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch off {
	case giccCTLR:
		g.cpuCtl = v & gicCtrlEnable
	case giccPMR:
		g.prioMask = v & 0xFFFF
	case giccEOIR:
		if v&gicIDMask == g.active {
			g.active = IRQSpurious
		}
	}
	g.pokeLocked()
}

func (g *GIC) deliverableLocked() uint32 {
	if g.distCtl&gicCtrlEnable == 0 || g.cpuCtl&gicCtrlEnable == 0 {
		return IRQSpurious
	}

	best := uint32(IRQSpurious)
	bestPrio := uint32(1 << 8)
	for reg, bits := range g.pending {
		bits &= g.enable[reg]
		for bits != 0 {
			bit := uint32(0)
			for bits&(1<<bit) == 0 {
				bit++
			}
			bits &^= 1 << bit

			line := uint32(reg)*32 + bit
			if g.target[line/4]>>((line%4)*8)&0xFF&1 == 0 {
				continue
			}
			p := g.prio[line/4] >> ((line % 4) * 8) & 0xFF
			if p < bestPrio || (p == bestPrio && line < best) {
				best = line
				bestPrio = p
			}
		}
	}
	return best
}

func (g *GIC) pokeLocked() {
	if g.deliverableLocked() == IRQSpurious {
		return
	}
	select {
	case g.raised <- struct{}{}:
	default:
	}
}
