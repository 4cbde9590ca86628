package hal

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"vex/internal/buildinfo"
)

// RunWindow opens a desktop window that presents the console framebuffer
// and feeds typed characters into the UART receive FIFO. Each frame pumps
// the machine clocks by the frame duration. Blocks until the window closes.
func RunWindow(m *Machine, fb *Framebuffer) error {
	g := &hostGame{m: m, fb: fb}
	ebiten.SetWindowTitle("vex (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(fb.Width()*2, fb.Height()*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	m  *Machine
	fb *Framebuffer

	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	last    time.Time
}

func (g *hostGame) Update() error {
	pollKeys(g.m.UART())

	now := time.Now()
	if !g.last.IsZero() {
		d := now.Sub(g.last)
		if d > 250*time.Millisecond {
			d = 250 * time.Millisecond
		}
		g.m.Advance(d)
	}
	g.last = now
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	w, h := g.fb.Width(), g.fb.Height()
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		g.scratch = make([]byte, g.fb.StrideBytes()*h)
		g.fbImg = ebiten.NewImage(w, h)
	}

	g.fb.SnapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.ReplacePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width(), g.fb.Height()
}
