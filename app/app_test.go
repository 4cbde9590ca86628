package app

import (
	"strings"
	"sync"
	"testing"

	"vex/hal"
)

func TestBootWritesBannerAndRegistersTasks(t *testing.T) {
	m := hal.NewMachine()

	var mu sync.Mutex
	var out []byte
	m.UART().SetTxSink(func(b byte) {
		mu.Lock()
		out = append(out, b)
		mu.Unlock()
	})

	s, err := Boot(m, Config{Echo: true})
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	if s == nil {
		t.Fatal("boot returned no scheduler")
	}

	mu.Lock()
	banner := string(out)
	mu.Unlock()
	if !strings.HasPrefix(banner, "vex ") {
		t.Fatalf("unexpected banner: %q", banner)
	}

	// Boot programs the serial line for 9600: IBRD (offset 0x24) holds
	// 24 MHz / (16 * 9600) = 156.
	if v := m.UART().ReadReg(0x24); v != 156 {
		t.Fatalf("IBRD = %d, want 156", v)
	}
}
