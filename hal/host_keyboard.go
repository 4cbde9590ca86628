package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// pollKeys forwards one frame's worth of typed input to the UART receive
// FIFO. Only characters and a few control keys are mapped; the serial line
// has no notion of key-up events.
func pollKeys(u *UART) {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 0x80 {
			u.InjectRx(byte(r))
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		u.InjectRx('\n')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		u.InjectRx(0x08)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		u.InjectRx('\t')
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		u.InjectRx(0x03)
	}
}
