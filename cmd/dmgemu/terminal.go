package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finch-emu/dmgcore/core"
	"github.com/finch-emu/dmgcore/dmg/bus"
	"github.com/finch-emu/dmgcore/dmg/video"
	"github.com/gdamore/tcell/v2"
)

const (
	frameTime = time.Second / 60

	registerPanelWidth = 24
)

var shadeChars = []rune{'█', '▓', '▒', '░'}

// terminalHost presents the console's visible 160x144 window and CPU
// register panel in a terminal, and turns key events into PressButton
// calls - the "frame presenter" and "button event source" the core
// delegates to its host. It never calls ReleaseButton: a button stays held
// once its key has been pressed.
type terminalHost struct {
	screen  tcell.Screen
	console *core.Console
	trace   bool
	running bool
}

func newTerminalHost(console *core.Console, trace bool) (*terminalHost, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}

	return &terminalHost{
		screen:  screen,
		console: console,
		trace:   trace,
		running: true,
	}, nil
}

func (t *terminalHost) Run() error {
	defer t.screen.Fini()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	go t.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for t.running {
		select {
		case <-ticker.C:
			t.runFrame()
			t.render()
			t.screen.Show()
		case <-signals:
			slog.Info("received signal, stopping terminal host")
			return nil
		}
	}

	return nil
}

func (t *terminalHost) runFrame() {
	for {
		t.console.Step()
		if t.trace {
			t.console.Dump()
		}
		t.console.Wait()
		if t.console.PPU.ConsumeFrameReady() {
			return
		}
	}
}

func (t *terminalHost) handleInput() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				t.running = false
				return
			case tcell.KeyEnter:
				t.console.PressButton(bus.ButtonStart)
			case tcell.KeyRight:
				t.console.PressButton(bus.ButtonRight)
			case tcell.KeyLeft:
				t.console.PressButton(bus.ButtonLeft)
			case tcell.KeyUp:
				t.console.PressButton(bus.ButtonUp)
			case tcell.KeyDown:
				t.console.PressButton(bus.ButtonDown)
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'a':
					t.console.PressButton(bus.ButtonA)
				case 's':
					t.console.PressButton(bus.ButtonB)
				case 'q':
					t.console.PressButton(bus.ButtonSelect)
				}
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *terminalHost) render() {
	termWidth, termHeight := t.screen.Size()
	minWidth := video.ViewportWidth + registerPanelWidth + 2
	if termWidth < minWidth || termHeight < video.ViewportHeight+1 {
		t.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", minWidth, video.ViewportHeight+1)
		for i, ch := range msg {
			t.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		return
	}

	t.screen.Clear()
	t.drawScreen()
	t.drawRegisters(termWidth)
}

// drawScreen renders the console's 160x144 visible window - the 256x256
// background canvas read out at the current scroll origin - as one
// character per pixel, shaded by the resolved 2-bit color index.
func (t *terminalHost) drawScreen() {
	scy, scx := t.console.Origin()
	fb := t.console.FrameBuffer()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	for y := 0; y < video.ViewportHeight; y++ {
		for x := 0; x < video.ViewportWidth; x++ {
			pixel := fb.GetPixel(int(scx)+x, int(scy)+y)
			t.screen.SetContent(x, y, shadeChars[pixel&0x03], nil, style)
		}
	}
}

func (t *terminalHost) drawRegisters(termWidth int) {
	startX := video.ViewportWidth + 2
	if startX >= termWidth {
		return
	}

	reg := t.console.CPU.Reg
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	lines := []string{
		fmt.Sprintf("A:%02X F:%02X", reg.A, reg.F),
		fmt.Sprintf("B:%02X C:%02X", reg.B, reg.C),
		fmt.Sprintf("D:%02X E:%02X", reg.D, reg.E),
		fmt.Sprintf("H:%02X L:%02X", reg.H, reg.L),
		fmt.Sprintf("SP:%04X", reg.SP),
		fmt.Sprintf("PC:%04X", reg.PC),
	}

	for i, line := range lines {
		x := startX
		for _, ch := range line {
			if x >= termWidth {
				break
			}
			t.screen.SetContent(x, i, ch, nil, style)
			x++
		}
	}
}
