//go:build !headless

package device

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/hajimehoshi/oto"
	"github.com/pkg/errors"
)

const otoBufferFrames = 1024

func init() {
	Register("oto", &otoBackend{})
}

// otoBackend pushes int16 frames into an oto v0.7 player.
type otoBackend struct{}

func (b *otoBackend) DefaultDevice() (Device, error) {
	return &otoDevice{name: "default"}, nil
}

// Devices lists PulseAudio sinks when a server is reachable.
func (b *otoBackend) Devices() ([]Device, error) {
	devices := []Device{&otoDevice{name: "default"}}
	sinks, err := pulseSinks()
	if err != nil {
		log.Printf("PulseAudio sinks not available: %v\n", err)
		return devices, nil
	}
	for _, sink := range sinks {
		devices = append(devices, &otoDevice{name: sink, sink: sink})
	}
	return devices, nil
}

// ----- Shared Context ----- //

// oto v0.7 allows one context per process.
var otoShared struct {
	sync.Mutex
	ctx *oto.Context
	cfg Config
}

func otoContext(cfg Config, sink string) (*oto.Context, error) {
	otoShared.Lock()
	defer otoShared.Unlock()
	if otoShared.ctx != nil {
		if otoShared.cfg == cfg {
			return otoShared.ctx, nil
		}
		if err := otoShared.ctx.Close(); err != nil {
			log.Printf("error while closing oto context: %v\n", err)
		}
		otoShared.ctx = nil
	}
	if sink != "" {
		os.Setenv("PULSE_SINK", sink)
	}
	ctx, err := oto.NewContext(cfg.SampleRate, cfg.Channels, cfg.Format.BytesPerSample(), cfg.BufferFrames*cfg.BytesPerFrame())
	if err != nil {
		return nil, err
	}
	otoShared.ctx = ctx
	otoShared.cfg = cfg
	return ctx, nil
}

// ----- Device ----- //

type otoDevice struct {
	name string
	sink string
}

func (d *otoDevice) Name() string {
	return d.name
}

func (d *otoDevice) Config() (Config, error) {
	return Config{
		SampleRate:   PreferredSampleRate,
		Channels:     2,
		Format:       FormatInt16,
		BufferFrames: otoBufferFrames,
	}, nil
}

func (d *otoDevice) Open(cfg Config, src io.Reader, onErr func(error)) (Stream, error) {
	if cfg.Format != FormatInt16 && cfg.Format != FormatUint8 {
		return nil, errors.Errorf("oto cannot play %v samples", cfg.Format)
	}
	ctx, err := otoContext(cfg, d.sink)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create oto context")
	}
	return &otoStream{
		player: ctx.NewPlayer(),
		src:    src,
		onErr:  onErr,
		buf:    make([]byte, cfg.BufferFrames*cfg.BytesPerFrame()),
		done:   make(chan struct{}),
	}, nil
}

// ----- Stream ----- //

type otoStream struct {
	player *oto.Player
	src    io.Reader
	onErr  func(error)
	buf    []byte

	playOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Read ends the copy loop once the stream is closed.
func (s *otoStream) Read(p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, io.EOF
	default:
		return s.src.Read(p)
	}
}

func (s *otoStream) Play() error {
	s.playOnce.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			// blocks until Close() is called
			if _, err := io.CopyBuffer(s.player, s, s.buf); err != nil && s.onErr != nil {
				s.onErr(err)
			}
		}()
	})
	return nil
}

func (s *otoStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		err = s.player.Close()
	})
	return err
}
