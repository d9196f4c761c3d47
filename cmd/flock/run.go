package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/flock/vmath"
)

var runSwarms int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch swarms chase orbiting owners in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = setupLogging(debug, filepath.Join(logDir, logFileName))
		if err != nil {
			return err
		}
		n := cfg.Viewer.Swarms
		if cmd.Flags().Changed("swarms") {
			n = runSwarms
		}

		h, err := newHost(cfg, n, logger)
		if err != nil {
			return err
		}
		defer h.close()

		v, err := newViewer(h, cfg.Viewer.WorldExtent)
		if err != nil {
			return err
		}
		return v.run(cfg.Viewer.FPS)
	},
}

func init() {
	runCmd.Flags().IntVarP(&runSwarms, "swarms", "n", 0, "Number of swarms (default from config)")
}

var swarmColors = []tcell.Color{
	tcell.ColorAqua,
	tcell.ColorYellow,
	tcell.ColorFuchsia,
	tcell.ColorLime,
	tcell.ColorOrange,
	tcell.ColorSilver,
}

// viewer renders a top-down XZ projection of every boid
type viewer struct {
	host   *host
	screen tcell.Screen
	extent float64

	width, height int
	paused        bool
}

func newViewer(h *host, extent float64) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	screen.HideCursor()

	v := &viewer{host: h, screen: screen, extent: extent}
	v.width, v.height = screen.Size()
	return v, nil
}

func (v *viewer) run(fps int) error {
	defer v.screen.Fini()

	// Closed before Fini so the pump never blocks on a full channel after exit
	done := make(chan struct{})
	defer close(done)

	eventChan := make(chan tcell.Event, 100)
	go pumpEvents(v.screen.PollEvent, eventChan, done)

	interval := time.Second / time.Duration(fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	dt := interval.Seconds()

	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				logger.Info("viewer exit", zap.Int64("frames", v.host.world.FrameNumber()))
				return nil
			}
		case <-ticker.C:
			if !v.paused {
				v.host.step(dt)
			}
			v.draw()
		}
	}
}

// pumpEvents forwards polled events until poll returns nil or done closes
func pumpEvents(poll func() tcell.Event, out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

// handleInput returns false when the viewer should exit
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			}
		}
	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	}
	return true
}

// project maps world XZ onto screen cells, ok is false outside the view
func (v *viewer) project(p vmath.Vec3F) (x, y int, ok bool) {
	if v.width == 0 || v.height < 2 {
		return 0, 0, false
	}
	fx := (p.X + v.extent) / (2 * v.extent)
	fz := (p.Z + v.extent) / (2 * v.extent)
	x = int(fx * float64(v.width))
	y = 1 + int(fz*float64(v.height-1))
	return x, y, x >= 0 && x < v.width && y >= 1 && y < v.height
}

func (v *viewer) draw() {
	v.screen.Clear()
	world := v.host.world

	for i, ref := range v.host.refs {
		sw, ok := v.host.swarms.Swarm(ref)
		if !ok {
			continue
		}
		style := tcell.StyleDefault.Foreground(swarmColors[i%len(swarmColors)])
		for _, node := range sw.Nodes {
			if x, y, ok := v.project(world.Nodes.WorldPosition(node)); ok {
				v.screen.SetContent(x, y, '•', nil, style)
			}
		}
	}

	ownerStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	for _, node := range v.host.ownerNodes {
		if x, y, ok := v.project(world.Nodes.WorldPosition(node)); ok {
			v.screen.SetContent(x, y, '@', nil, ownerStyle)
		}
	}

	hud := fmt.Sprintf("frame=%d", world.FrameNumber())
	for _, line := range world.Status.Lines() {
		hud += "  " + line
	}
	if v.paused {
		hud += "  [paused]"
	}
	v.drawText(0, 0, hud, tcell.StyleDefault.Reverse(true))
	v.screen.Show()
}

func (v *viewer) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= v.width {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
