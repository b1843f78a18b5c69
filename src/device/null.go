package device

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// PreferredSampleRate is the rate backends ask their devices for.
var PreferredSampleRate = 48000

// DefaultConfig is used by the null device.
var DefaultConfig = Config{
	SampleRate:   48000,
	Channels:     2,
	Format:       FormatFloat32,
	BufferFrames: 512,
}

func init() {
	Register("null", nullBackend{})
}

type nullBackend struct{}

func (nullBackend) Devices() ([]Device, error) {
	d, err := nullBackend{}.DefaultDevice()
	if err != nil {
		return nil, err
	}
	return []Device{d}, nil
}

func (nullBackend) DefaultDevice() (Device, error) {
	cfg := DefaultConfig
	cfg.SampleRate = PreferredSampleRate
	return NewNull("null", cfg), nil
}

// ----- Null Device ----- //

// NullDevice is a headless output. A ticker pulls one buffer per period, as a
// sound card would, and hands the bytes to Sink.
type NullDevice struct {
	name  string
	cfg   Config
	reads atomic.Uint64
	// Sink receives every rendered buffer. It must not retain the slice.
	Sink func([]byte)
}

// NewNull ...
func NewNull(name string, cfg Config) *NullDevice {
	return &NullDevice{name: name, cfg: cfg}
}

// Name ...
func (d *NullDevice) Name() string {
	return d.name
}

// Config ...
func (d *NullDevice) Config() (Config, error) {
	return d.cfg, nil
}

// Reads is the number of buffers pulled so far.
func (d *NullDevice) Reads() uint64 {
	return d.reads.Load()
}

// Open ...
func (d *NullDevice) Open(cfg Config, src io.Reader, onErr func(error)) (Stream, error) {
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 || cfg.Format.BytesPerSample() == 0 {
		return nil, errors.Errorf("invalid stream config: %v", cfg)
	}
	frames := cfg.BufferFrames
	if frames <= 0 {
		frames = DefaultConfig.BufferFrames
	}
	return &nullStream{
		device: d,
		src:    src,
		onErr:  onErr,
		buf:    make([]byte, frames*cfg.BytesPerFrame()),
		period: time.Duration(frames) * time.Second / time.Duration(cfg.SampleRate),
		done:   make(chan struct{}),
	}, nil
}

type nullStream struct {
	device *NullDevice
	src    io.Reader
	onErr  func(error)
	buf    []byte
	period time.Duration

	playOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func (s *nullStream) Play() error {
	s.playOnce.Do(func() {
		s.wg.Add(1)
		go s.loop()
	})
	return nil
}

func (s *nullStream) loop() {
	defer s.wg.Done()
	t := time.NewTicker(s.period)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			if _, err := io.ReadFull(s.src, s.buf); err != nil {
				if err != io.EOF && s.onErr != nil {
					s.onErr(err)
				}
				return
			}
			s.device.reads.Add(1)
			if s.device.Sink != nil {
				s.device.Sink(s.buf)
			}
		}
	}
}

// Close waits for an in-flight read to finish.
func (s *nullStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	return nil
}
