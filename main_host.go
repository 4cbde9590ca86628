package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"vex/app"
	"vex/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var echo bool
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 1000, "Clock pump rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N pump beats in headless mode (0 = run forever).")
	flag.BoolVar(&echo, "echo", true, "Run the serial echo task.")
	flag.Parse()

	m := hal.NewMachine()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Enabled {
		if err := runHeadless(ctx, stop, m, cfg, echo); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	fb := hal.NewFramebuffer(640, 480)
	con := hal.NewConsole(fb)
	m.UART().SetTxSink(con.PutByte)

	go func() {
		if err := app.Run(ctx, m, app.Config{Echo: echo}); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	if err := hal.RunWindow(m, fb); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runHeadless(ctx context.Context, stop context.CancelFunc, m *hal.Machine, cfg hal.HeadlessConfig, echo bool) error {
	out := make([]byte, 1)
	m.UART().SetTxSink(func(b byte) {
		out[0] = b
		os.Stdout.Write(out)
	})

	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx, m, app.Config{Echo: echo}) }()

	if err := hal.RunHeadless(ctx, m, cfg); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	stop()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
