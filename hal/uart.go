package hal

import "sync"

// PL011 register offsets.
const (
	uartDR     = 0x00
	uartRSRECR = 0x04
	uartFR     = 0x18
	uartIBRD   = 0x24
	uartFBRD   = 0x28
	uartLCRH   = 0x2C
	uartCR     = 0x30
)

const (
	uartFRBusy = 1 << 3
	uartFRRXFE = 1 << 4
	uartFRTXFF = 1 << 5

	uartRSRECRErrMask = 0xF

	uartLCRHFEN       = 1 << 4
	uartLCRHPEN       = 1 << 1
	uartLCRHSTP2      = 1 << 3
	uartLCRHWLenShift = 5

	uartCREnable = 1 << 0
)

// UARTRefClockHz is the reference clock feeding the baudrate divider.
const UARTRefClockHz = 24_000_000

const uartRxFIFO = 16

// UARTConfig is the line discipline requested at configuration time.
type UARTConfig struct {
	DataBits uint8
	StopBits uint8
	Parity   bool
	Baudrate uint32
}

type rxEntry struct {
	b   byte
	err bool
}

// UART models a PL011. Transmit is the diagnostic transport: bytes written
// by the kernel come out of the tx sink (host console / stdout). Receive is
// fed by the host (keyboard) through InjectRx and drained with ReadByte.
type UART struct {
	mu sync.Mutex

	ibrd uint32
	fbrd uint32
	lcrh uint32
	cr   uint32
	rsr  uint32

	rx      [uartRxFIFO]rxEntry
	rxHead  uint8
	rxCount uint8

	sink func(byte)

	gic  *GIC
	line uint32
}

// NewUART returns an unconfigured UART wired to the given interrupt line.
func NewUART(gic *GIC, line uint32) *UART {
	return &UART{gic: gic, line: line}
}

// SetTxSink installs the host-side consumer of transmitted bytes.
func (u *UART) SetTxSink(fn func(byte)) {
	u.mu.Lock()
	u.sink = fn
	u.mu.Unlock()
}

// Configure validates the requested line discipline, programs the divider
// and line control registers, and enables the UART.
func (u *UART) Configure(cfg UARTConfig) error {
	if cfg.Baudrate == 0 {
		return ErrInvalidBaudrate
	}
	div := uint32(UARTRefClockHz) / (16 * cfg.Baudrate)
	if div == 0 || div > 0xFFFF {
		return ErrInvalidBaudrate
	}
	rem := uint32(UARTRefClockHz) % (16 * cfg.Baudrate)
	frac := (rem * 64) / (16 * cfg.Baudrate)

	if cfg.DataBits < 5 || cfg.DataBits > 8 {
		return ErrInvalidWordSize
	}
	if cfg.StopBits == 0 || cfg.StopBits > 2 {
		return ErrInvalidStopBits
	}

	lcrh := uint32(cfg.DataBits-5) << uartLCRHWLenShift
	lcrh |= uartLCRHFEN
	if cfg.Parity {
		lcrh |= uartLCRHPEN
	}
	if cfg.StopBits == 2 {
		lcrh |= uartLCRHSTP2
	}

	u.WriteReg(uartIBRD, div)
	u.WriteReg(uartFBRD, frac)
	u.WriteReg(uartLCRH, lcrh)
	u.WriteReg(uartCR, uartCREnable)
	return nil
}

// WriteByte transmits a single byte.
func (u *UART) WriteByte(b byte) {
	u.WriteReg(uartDR, uint32(b))
}

// WriteString transmits a string.
func (u *UART) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		u.WriteByte(s[i])
	}
}

// Write implements io.Writer over the transmit path.
func (u *UART) Write(p []byte) (int, error) {
	for _, b := range p {
		u.WriteByte(b)
	}
	return len(p), nil
}

// ReadByte pops one received byte. Returns ErrNoData when the receive FIFO
// is empty and ErrReceiveError (clearing the error register) when the byte
// was received with a line error. Both are transient, never fatal.
func (u *UART) ReadByte() (byte, error) {
	if u.ReadReg(uartFR)&uartFRRXFE != 0 {
		return 0, ErrNoData
	}
	b := byte(u.ReadReg(uartDR))
	if u.ReadReg(uartRSRECR)&uartRSRECRErrMask != 0 {
		u.WriteReg(uartRSRECR, 0)
		return 0, ErrReceiveError
	}
	return b, nil
}

// InjectRx places a byte in the receive FIFO and latches the UART's
// interrupt line. Bytes beyond the FIFO depth are dropped (overrun).
func (u *UART) InjectRx(b byte) {
	u.injectRx(rxEntry{b: b})
}

// InjectRxError places a corrupted byte in the receive FIFO; draining it
// reports a receive error.
func (u *UART) InjectRxError() {
	u.injectRx(rxEntry{err: true})
}

func (u *UART) injectRx(e rxEntry) {
	u.mu.Lock()
	if u.cr&uartCREnable == 0 || u.rxCount >= uartRxFIFO {
		u.mu.Unlock()
		return
	}
	u.rx[(u.rxHead+u.rxCount)%uartRxFIFO] = e
	u.rxCount++
	gic, line := u.gic, u.line
	u.mu.Unlock()

	if gic != nil {
		gic.SetPending(line)
	}
}

// ReadReg reads a 32-bit UART register. Reading DR pops the receive FIFO.
func (u *UART) ReadReg(off uint32) uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch off {
	case uartDR:
		if u.rxCount == 0 {
			return 0
		}
		e := u.rx[u.rxHead]
		u.rxHead = (u.rxHead + 1) % uartRxFIFO
		u.rxCount--
		if e.err {
			u.rsr |= 1 // framing error
		}
		return uint32(e.b)
	case uartRSRECR:
		return u.rsr
	case uartFR:
		v := uint32(0)
		if u.rxCount == 0 {
			v |= uartFRRXFE
		}
		return v
	case uartIBRD:
		return u.ibrd
	case uartFBRD:
		return u.fbrd
	case uartLCRH:
		return u.lcrh
	case uartCR:
		return u.cr
	}
	return 0
}

// WriteReg writes a 32-bit UART register. Writing DR transmits; writing
// RSRECR clears the receive error state.
func (u *UART) WriteReg(off, v uint32) {
	u.mu.Lock()
	var sink func(byte)
	switch off {
	case uartDR:
		if u.cr&uartCREnable != 0 {
			sink = u.sink
		}
	case uartRSRECR:
		u.rsr = 0
	case uartIBRD:
		u.ibrd = v & 0xFFFF
	case uartFBRD:
		u.fbrd = v & 0x3F
	case uartLCRH:
		u.lcrh = v
	case uartCR:
		u.cr = v
	}
	u.mu.Unlock()

	if sink != nil {
		sink(byte(v))
	}
}
