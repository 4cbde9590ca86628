package hal

import "sync"

// Framebuffer is a locked RGB565 pixel buffer shared between the console
// renderer and the window's draw loop.
type Framebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

// NewFramebuffer returns a cleared RGB565 framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	stride := width * 2
	return &Framebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *Framebuffer) Width() int          { return f.width }
func (f *Framebuffer) Height() int         { return f.height }
func (f *Framebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *Framebuffer) StrideBytes() int    { return f.stride }

// SetPixel565 writes one pixel. Out-of-bounds writes are dropped.
func (f *Framebuffer) SetPixel565(x, y int, p uint16) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.mu.Lock()
	off := y*f.stride + x*2
	f.buf[off] = byte(p)
	f.buf[off+1] = byte(p >> 8)
	f.mu.Unlock()
}

// FillRect565 fills a rectangle, clipped to the buffer.
func (f *Framebuffer) FillRect565(x, y, w, h int, p uint16) {
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > f.width {
		w = f.width - x
	}
	if y+h > f.height {
		h = f.height - y
	}
	if w <= 0 || h <= 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	lo := byte(p)
	hi := byte(p >> 8)
	for row := y; row < y+h; row++ {
		off := row*f.stride + x*2
		for col := 0; col < w; col++ {
			f.buf[off] = lo
			f.buf[off+1] = hi
			off += 2
		}
	}
}

// ClearRGB fills the buffer with a solid color.
func (f *Framebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

// ScrollUp shifts the buffer up by the given number of pixel rows, filling
// the exposed band with the background color.
func (f *Framebuffer) ScrollUp(rows int, r, g, b uint8) {
	if rows <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if rows >= f.height {
		rows = f.height
	}
	copy(f.buf, f.buf[rows*f.stride:])

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := (f.height - rows) * f.stride; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

// SnapshotRGB565 copies the buffer for presentation.
func (f *Framebuffer) SnapshotRGB565(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}

func rgb565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

func rgb888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}
