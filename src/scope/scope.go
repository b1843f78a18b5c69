package scope

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jinjor/desktop-oscilloscope/src/audio"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

// DefaultFPS is the redraw rate of the scope.
const DefaultFPS = 60

var (
	phosphor = [...]termbox.Attribute{
		termbox.ColorDefault,
		23 + 1,
		29 + 1,
		35 + 1,
		46 + 1,
	}
	gridColor   = termbox.Attribute(238 + 1)
	statusColor = termbox.Attribute(250 + 1)
)

// Config ...
type Config struct {
	Buffer *audio.SampleBuffer
	// Settings is called once per frame.
	Settings func() audio.DisplaySettings
	// Status is shown on the bottom line.
	Status func() string
	// Commands receives the commands typed as keys. It may be nil.
	Commands chan<- []string
	FPS      int
}

// Scope draws the sample buffer on the terminal like a phosphor screen.
type Scope struct {
	cfg     Config
	raster  *Raster
	gain    *AutoGain
	written uint64
	xs      []float64
	ys      []float64
}

// New ...
func New(cfg Config) *Scope {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	return &Scope{
		cfg:    cfg,
		raster: NewRaster(1, 1),
		gain:   NewAutoGain(cfg.FPS),
	}
}

// Run takes over the terminal until ctx is done or the user quits.
func (s *Scope) Run(ctx context.Context) error {
	restore, err := normalizeTerminal()
	if err != nil {
		return err
	}
	defer restore()

	if err := termbox.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize terminal")
	}
	defer termbox.Close()
	termbox.SetOutputMode(termbox.Output256)
	termbox.HideCursor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	polled := make(chan struct{})
	go func() {
		defer close(polled)
		s.eventPoller(cancel)
	}()
	defer func() {
		termbox.Interrupt()
		<-polled
	}()

	t := time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("scope closed")
			return nil
		case <-t.C:
			if err := s.draw(); err != nil {
				return err
			}
		}
	}
}

func (s *Scope) eventPoller(cancel context.CancelFunc) {
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventInterrupt:
			return
		case termbox.EventError:
			log.Printf("terminal error: %v\n", ev.Err)
			cancel()
			return
		case termbox.EventKey:
			switch {
			case ev.Key == termbox.KeyCtrlC, ev.Key == termbox.KeyEsc, ev.Ch == 'q':
				cancel()
				return
			case ev.Key == termbox.KeySpace:
				s.send("toggle")
			case ev.Ch == '+', ev.Ch == '=':
				s.send("set", "display", "zoom", fmt.Sprint(s.settings().Zoom+0.1))
			case ev.Ch == '-':
				s.send("set", "display", "zoom", fmt.Sprint(s.settings().Zoom-0.1))
			case ev.Ch == 'g':
				s.send("set", "display", "graticule", fmt.Sprint(!s.settings().Graticule))
			}
		}
	}
}

func (s *Scope) send(command ...string) {
	if s.cfg.Commands == nil {
		return
	}
	select {
	case s.cfg.Commands <- command:
	default:
		log.Println("WARN: command dropped")
	}
}

// Frame advances the raster by the points written since the last frame.
func (s *Scope) Frame(width, height int, settings audio.DisplaySettings) {
	s.raster.Resize(width, height)
	s.raster.Decay(settings.Persistence)

	written := s.cfg.Buffer.Written()
	n := int(min(written-s.written, uint64(s.cfg.Buffer.Cap())))
	s.written = written
	points := s.cfg.Buffer.RecentSamples(n)
	s.xs, s.ys = s.xs[:0], s.ys[:0]
	for _, p := range points {
		s.xs = append(s.xs, p.X)
		s.ys = append(s.ys, p.Y)
	}
	gain := s.gain.Update(Peak(s.xs, s.ys)) * settings.Zoom
	s.raster.Trace(s.xs, s.ys, gain, settings.Intensity)
}

func (s *Scope) settings() audio.DisplaySettings {
	if s.cfg.Settings == nil {
		return audio.NewDisplaySettings()
	}
	return s.cfg.Settings()
}

func (s *Scope) draw() error {
	settings := s.settings()

	w, h := termbox.Size()
	h--
	if w < 1 || h < 1 {
		return nil
	}
	// cells are about twice as tall as wide
	rw := min(w, 2*h)
	left := (w - rw) / 2
	s.Frame(rw, h, settings)

	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return errors.Wrap(err, "failed to clear terminal")
	}
	for row := 0; row < h; row++ {
		for col := 0; col < rw; col++ {
			level := Level(s.raster.At(col, row))
			if level > 0 {
				termbox.SetCell(left+col, row, Ramp[level], phosphor[level], termbox.ColorDefault)
				continue
			}
			if settings.Graticule {
				if g := s.raster.Graticule(col, row); g != 0 {
					termbox.SetCell(left+col, row, g, gridColor, termbox.ColorDefault)
				}
			}
		}
	}
	if s.cfg.Status != nil {
		status := s.cfg.Status()
		if dropped := s.cfg.Buffer.Dropped(); dropped > 0 {
			status += fmt.Sprintf(" (%d dropped)", dropped)
		}
		for i, ch := range []rune(status) {
			termbox.SetCell(i, h, ch, statusColor, termbox.ColorDefault)
		}
	}
	return termbox.Flush()
}

// normalizeTerminal works around termbox failing with some TERMINFO values under tmux.
// It returns a function restoring the environment.
func normalizeTerminal() (func(), error) {
	prevTERMINFO := os.Getenv("TERMINFO")

	if strings.HasPrefix(os.Getenv("TERM"), "tmux") {
		if err := os.Unsetenv("TERMINFO"); err != nil {
			return nil, err
		}
	}

	restore := func() {
		if err := os.Setenv("TERMINFO", prevTERMINFO); err != nil {
			log.Printf("failed to restore TERMINFO: %v\n", err)
		}
	}
	return restore, nil
}
