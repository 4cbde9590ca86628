package hal

import (
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Console renders the UART's transmit stream as a scrolling text terminal
// on the framebuffer. It is the windowed stand-in for a serial console.
type Console struct {
	mu   sync.Mutex
	fb   *Framebuffer
	font tinyfont.Fonter

	lineH int
	row   int
	cur   []byte

	fg color.RGBA
	bg color.RGBA
}

// NewConsole returns a console drawing on fb with the default font.
func NewConsole(fb *Framebuffer) *Console {
	c := &Console{
		fb:   fb,
		font: &proggy.TinySZ8pt7b,
		fg:   color.RGBA{R: 0xC8, G: 0xE0, B: 0xC8, A: 0xFF},
		bg:   color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xFF},
	}
	c.lineH = int(c.font.GetYAdvance()) + 1
	fb.ClearRGB(c.bg.R, c.bg.G, c.bg.B)
	return c
}

// PutByte consumes one transmitted byte. Suitable as the UART tx sink.
func (c *Console) PutByte(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch b {
	case '\r':
	case '\n':
		c.cur = c.cur[:0]
		c.advanceLocked()
	default:
		if b < 0x20 || b >= 0x7F {
			b = '.'
		}
		c.cur = append(c.cur, b)
		c.renderLocked()
	}
}

func (c *Console) renderLocked() {
	top := c.row * c.lineH
	c.fb.FillRect565(0, top, c.fb.Width(), c.lineH, rgb565(c.bg.R, c.bg.G, c.bg.B))
	baseline := top + c.lineH - 2
	tinyfont.WriteLine(fbDisplay{fb: c.fb}, c.font, 2, int16(baseline), string(c.cur), c.fg)
}

func (c *Console) advanceLocked() {
	c.row++
	if (c.row+1)*c.lineH > c.fb.Height() {
		c.fb.ScrollUp(c.lineH, c.bg.R, c.bg.G, c.bg.B)
		c.row--
	}
}

// fbDisplay adapts the framebuffer to the displayer interface tinyfont
// draws on.
type fbDisplay struct {
	fb *Framebuffer
}

var _ drivers.Displayer = fbDisplay{}

func (d fbDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.fb.SetPixel565(int(x), int(y), rgb565(c.R, c.G, c.B))
}

func (d fbDisplay) Display() error { return nil }
