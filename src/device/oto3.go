//go:build !headless

package device

import (
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

const oto3BufferFrames = 512

func init() {
	Register("oto3", &oto3Backend{})
}

// oto3Backend lets the oto v3 mixer pull float32 frames.
type oto3Backend struct{}

func (b *oto3Backend) DefaultDevice() (Device, error) {
	return &oto3Device{}, nil
}

func (b *oto3Backend) Devices() ([]Device, error) {
	return []Device{&oto3Device{}}, nil
}

// oto v3 allows one context per process, with a fixed config.
var oto3Shared struct {
	once sync.Once
	ctx  *oto.Context
	cfg  Config
	err  error
}

func oto3Context(cfg Config) (*oto.Context, error) {
	oto3Shared.once.Do(func() {
		format := oto.FormatFloat32LE
		if cfg.Format == FormatInt16 {
			format = oto.FormatSignedInt16LE
		}
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: cfg.Channels,
			Format:       format,
			BufferSize:   time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate),
		})
		if err != nil {
			oto3Shared.err = err
			return
		}
		<-ready
		oto3Shared.ctx = ctx
		oto3Shared.cfg = cfg
	})
	if oto3Shared.err != nil {
		return nil, oto3Shared.err
	}
	if oto3Shared.cfg != cfg {
		return nil, errors.Errorf("oto context already running with %v", oto3Shared.cfg)
	}
	return oto3Shared.ctx, nil
}

// ----- Device ----- //

type oto3Device struct{}

func (d *oto3Device) Name() string {
	return "default"
}

func (d *oto3Device) Config() (Config, error) {
	if oto3Shared.ctx != nil {
		return oto3Shared.cfg, nil
	}
	return Config{
		SampleRate:   PreferredSampleRate,
		Channels:     2,
		Format:       FormatFloat32,
		BufferFrames: oto3BufferFrames,
	}, nil
}

func (d *oto3Device) Open(cfg Config, src io.Reader, onErr func(error)) (Stream, error) {
	if cfg.Format != FormatFloat32 && cfg.Format != FormatInt16 {
		return nil, errors.Errorf("oto cannot play %v samples", cfg.Format)
	}
	ctx, err := oto3Context(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create oto context")
	}
	return &oto3Stream{
		ctx:    ctx,
		player: ctx.NewPlayer(src),
		onErr:  onErr,
		done:   make(chan struct{}),
	}, nil
}

// ----- Stream ----- //

type oto3Stream struct {
	ctx    *oto.Context
	player *oto.Player
	onErr  func(error)

	playOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func (s *oto3Stream) Play() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	s.playOnce.Do(func() {
		s.player.Play()
		s.wg.Add(1)
		go s.watch()
	})
	return nil
}

// watch reports player errors; oto v3 has no error callback.
func (s *oto3Stream) watch() {
	defer s.wg.Done()
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			err := s.player.Err()
			if err == nil {
				err = s.ctx.Err()
			}
			if err != nil {
				if s.onErr != nil {
					s.onErr(err)
				}
				return
			}
		}
	}
}

func (s *oto3Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.player.Pause()
		err = s.player.Close()
	})
	return err
}
