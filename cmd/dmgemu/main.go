package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/finch-emu/dmgcore/core"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgemu"
	app.Description = "A Game Boy (DMG) core with a terminal reference host"
	app.Usage = "dmgemu [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Run headless for N frames and exit, instead of opening the terminal host",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Dump a CPU trace line to stderr after every instruction",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgemu exiting", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	console, err := core.NewConsoleFromFile(romPath)
	if err != nil {
		return fmt.Errorf("loading %q: %w", romPath, err)
	}

	trace := c.Bool("trace")
	if trace {
		// Dump logs at Debug level; lower the default logger's threshold so
		// its trace lines reach stderr.
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if frames := c.Int("frames"); frames > 0 {
		return runHeadless(console, frames, trace)
	}

	host, err := newTerminalHost(console, trace)
	if err != nil {
		return err
	}
	return host.Run()
}

// runHeadless steps the console for exactly frames frames and exits,
// without opening a terminal session. Useful for CI and Blargg-style
// acceptance runs, where the serial debug sink is the thing worth watching.
func runHeadless(console *core.Console, frames int, trace bool) error {
	slog.Info("running headless", "rom_frames", frames)
	for i := 0; i < frames; i++ {
		for {
			console.Step()
			if trace {
				console.Dump()
			}
			console.Wait()
			if console.PPU.ConsumeFrameReady() {
				break
			}
		}
	}
	slog.Info("headless run complete", "frames", frames)
	return nil
}
