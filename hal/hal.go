// Package hal models the hardware of a Versatile Express-style ARM board:
// a GICv1 interrupt controller, the Cortex-A9 private timer and a PL011
// UART, all as memory-mapped 32-bit register blocks with exact hardware
// offsets and bit positions. The kernel layers above only ever speak the
// semantic interfaces declared here; register access stays confined to this
// package.
package hal

import "errors"

// Interrupt line identifiers on this board.
const (
	// IRQPrivateTimer is the Cortex-A9 private timer PPI.
	IRQPrivateTimer = 29
	// IRQUart0 is the first PL011 SPI.
	IRQUart0 = 37
	// IRQSpurious is the GIC "no interrupt" identifier, returned by an
	// acknowledge when nothing is pending.
	IRQSpurious = 1023
)

// IntController arms, acknowledges and retires interrupt lines.
//
// Acknowledge must be called exactly once per interrupt entry, and
// EndOfInterrupt exactly once with the identifier Acknowledge returned.
type IntController interface {
	Enable(line uint32)
	Acknowledge() uint32
	EndOfInterrupt(id uint32)
}

var (
	ErrInvalidInterval = errors.New("hal: timer interval not representable")
	ErrInvalidBaudrate = errors.New("hal: invalid baudrate")
	ErrInvalidWordSize = errors.New("hal: invalid word size")
	ErrInvalidStopBits = errors.New("hal: invalid stop bits")
	ErrReceiveError    = errors.New("hal: uart receive error")
	ErrNoData          = errors.New("hal: uart no data")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)
