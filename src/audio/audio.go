package audio

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/jinjor/desktop-oscilloscope/src/curve"
	"github.com/jinjor/desktop-oscilloscope/src/device"
	"github.com/jinjor/desktop-oscilloscope/src/effect"
	"github.com/pkg/errors"
)

// DefaultDecimation is how many frames are rendered per point kept for the display.
const DefaultDecimation = 8

var (
	// ErrNoShape is returned by Start when no shape has been set.
	ErrNoShape = errors.New("no shape selected")
	// ErrDeviceUnavailable ...
	ErrDeviceUnavailable = errors.New("no output device available")
	// ErrUnsupportedFormat ...
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	// ErrStreamBuild ...
	ErrStreamBuild = errors.New("failed to build stream")
	// ErrStreamStart ...
	ErrStreamStart = errors.New("failed to start stream")
)

// ----- Utility ----- //

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}

// ----- Options ----- //

// Option configures an Engine.
type Option func(*Engine)

// WithDevice selects a device by name. The backend default is used otherwise.
func WithDevice(name string) Option {
	return func(e *Engine) {
		e.deviceName = name
	}
}

// WithBuffer shares a sample buffer with the display.
func WithBuffer(b *SampleBuffer) Option {
	return func(e *Engine) {
		e.buffer = b
	}
}

// WithDecimation keeps one point out of every k frames for the display.
func WithDecimation(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.decimation = k
		}
	}
}

// ----- Engine ----- //

// Engine turns the current Shape into an XY audio stream.
//
// The setters are meant for one control goroutine. The audio goroutine only
// uses atomics and try-locks, so it never waits on the control side.
type Engine struct {
	backend    device.Backend
	deviceName string
	decimation int
	buffer     *SampleBuffer

	shape        atomic.Pointer[Shape]
	playing      atomic.Bool
	sampleIndex  atomic.Int64
	totalSamples atomic.Uint64
	sampleRate   atomic.Int64

	paramsMu sync.RWMutex
	params   EffectParams

	mu     sync.Mutex // guards stream and status
	stream device.Stream
	status string
}

// NewEngine ...
func NewEngine(backend device.Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:    backend,
		decimation: DefaultDecimation,
		params:     NewEffectParams(),
		status:     "Stopped",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.buffer == nil {
		e.buffer = NewSampleBuffer(DefaultBufferCapacity)
	}
	e.sampleRate.Store(DefaultSampleRate)
	return e
}

// SetShape pre-samples c on the caller's goroutine and publishes it.
// Rendering restarts from the first point of the new shape.
func (e *Engine) SetShape(c curve.Curve, frequency float64, sampleRate int, volume float64) {
	if c == nil {
		e.shape.Store(nil)
		log.Println("Shape cleared")
		return
	}
	s := Presample(c, frequency, sampleRate, volume)
	e.shape.Store(s)
	log.Printf("Shape set: %s (%d samples)\n", s.Name, len(s.Points))
	e.mu.Lock()
	if e.stream != nil {
		e.status = playingStatus(s)
	}
	e.mu.Unlock()
}

// SetEffects replaces the effect parameters.
func (e *Engine) SetEffects(p EffectParams) {
	e.paramsMu.Lock()
	e.params = p
	e.paramsMu.Unlock()
}

// Effects returns a copy of the effect parameters.
func (e *Engine) Effects() EffectParams {
	e.paramsMu.RLock()
	defer e.paramsMu.RUnlock()
	return e.params
}

// Start opens the output stream. It does nothing when already playing.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stream != nil {
		return nil
	}
	s := e.shape.Load()
	if s == nil {
		return e.fail(ErrNoShape)
	}
	log.Println("Starting audio engine...")
	if e.backend == nil {
		return e.fail(ErrDeviceUnavailable)
	}
	dev, err := device.Find(e.backend, e.deviceName)
	if err != nil {
		return e.fail(errors.Wrap(ErrDeviceUnavailable, err.Error()))
	}
	cfg, err := dev.Config()
	if err != nil {
		return e.fail(errors.Wrap(ErrDeviceUnavailable, err.Error()))
	}
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 {
		return e.fail(errors.Wrapf(ErrDeviceUnavailable, "invalid device config %v", cfg))
	}
	if !supportedFormat(cfg.Format) {
		return e.fail(errors.Wrapf(ErrUnsupportedFormat, "%v", cfg.Format))
	}
	log.Printf("Output device: %s (%v)\n", dev.Name(), cfg)

	e.sampleRate.Store(int64(cfg.SampleRate))
	if s.SampleRate != cfg.SampleRate {
		s = e.resample(s, cfg.SampleRate)
	}
	e.totalSamples.Store(0)
	e.playing.Store(true)
	stream, err := dev.Open(cfg, newRenderer(e, cfg), e.onStreamError)
	if err != nil {
		e.playing.Store(false)
		return e.fail(errors.Wrap(ErrStreamBuild, err.Error()))
	}
	if err := stream.Play(); err != nil {
		e.playing.Store(false)
		if err := stream.Close(); err != nil {
			log.Printf("error while closing stream: %v\n", err)
		}
		return e.fail(errors.Wrap(ErrStreamStart, err.Error()))
	}
	e.stream = stream
	e.status = playingStatus(s)
	log.Println("Audio started successfully")
	return nil
}

// fail records err as the status. Callers hold e.mu.
func (e *Engine) fail(err error) error {
	e.status = "Error: " + err.Error()
	log.Printf("failed to start audio: %v\n", err)
	return err
}

func (e *Engine) onStreamError(err error) {
	log.Printf("audio stream error: %v\n", err)
}

// Stop closes the stream. No buffers are rendered after it returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing.Store(false)
	if e.stream != nil {
		if err := e.stream.Close(); err != nil {
			log.Printf("error while closing stream: %v\n", err)
		}
		e.stream = nil
		log.Println("Audio stopped")
	}
	e.status = "Stopped"
}

// Toggle ...
func (e *Engine) Toggle() error {
	if e.Playing() {
		e.Stop()
		return nil
	}
	return e.Start()
}

// Close ...
func (e *Engine) Close() error {
	log.Println("Closing Engine...")
	e.Stop()
	return nil
}

// resample replaces s by a copy sampled at sampleRate, unless SetShape replaced s in the meantime.
// It returns the shape now published.
func (e *Engine) resample(s *Shape, sampleRate int) *Shape {
	resampled := Presample(s.Curve, s.Frequency, sampleRate, s.Volume)
	if e.shape.CompareAndSwap(s, resampled) {
		log.Printf("Shape resampled: %s (%d samples)\n", resampled.Name, len(resampled.Points))
		return resampled
	}
	if current := e.shape.Load(); current != nil {
		return current
	}
	return s
}

func playingStatus(s *Shape) string {
	return fmt.Sprintf("Playing: %s at %.0fHz, %.0f%% volume", s.Name, s.Frequency, s.Volume*100)
}

// Playing ...
func (e *Engine) Playing() bool {
	return e.playing.Load()
}

// Status ...
func (e *Engine) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Shape returns the published shape, or nil.
func (e *Engine) Shape() *Shape {
	return e.shape.Load()
}

// ShapeName ...
func (e *Engine) ShapeName() string {
	if s := e.shape.Load(); s != nil {
		return s.Name
	}
	return ""
}

// SampleRate is the rate of the current or last stream.
func (e *Engine) SampleRate() int {
	return int(e.sampleRate.Load())
}

// SampleIndex is the position in the shape of the next frame.
func (e *Engine) SampleIndex() int {
	return int(e.sampleIndex.Load())
}

// TotalSamples is the number of frames rendered since Start.
func (e *Engine) TotalSamples() uint64 {
	return e.totalSamples.Load()
}

// Buffer ...
func (e *Engine) Buffer() *SampleBuffer {
	return e.buffer
}

// ----- Renderer ----- //

// renderer is the io.Reader handed to the device. It is used by one goroutine at a time.
type renderer struct {
	engine     *Engine
	format     device.Format
	channels   int
	sampleSize int
	frameSize  int
	sampleRate float64
	decimation int

	current *Shape
	params  EffectParams
	builder chainBuilder
	empty   effect.Chain
	scratch []Point
}

var _ io.Reader = (*renderer)(nil)

func newRenderer(e *Engine, cfg device.Config) *renderer {
	frames := cfg.BufferFrames
	if frames <= 0 {
		frames = 1024
	}
	return &renderer{
		engine:     e,
		format:     cfg.Format,
		channels:   cfg.Channels,
		sampleSize: cfg.Format.BytesPerSample(),
		frameSize:  cfg.BytesPerFrame(),
		sampleRate: float64(cfg.SampleRate),
		decimation: e.decimation,
		scratch:    make([]Point, 0, frames/e.decimation+1),
	}
}

// Read renders as many whole frames as fit in buf.
func (r *renderer) Read(buf []byte) (int, error) {
	frames := len(buf) / r.frameSize
	n := frames * r.frameSize
	r.render(buf[:n], frames)
	return n, nil
}

func (r *renderer) render(buf []byte, frames int) {
	e := r.engine
	s := e.shape.Load()
	if !e.playing.Load() || s == nil || len(s.Points) == 0 {
		writeSilence(buf, r.format)
		return
	}
	if s != r.current {
		r.current = s
		e.sampleIndex.Store(0)
	}

	chain := &r.empty
	if e.paramsMu.TryRLock() {
		r.params = e.params
		e.paramsMu.RUnlock()
		chain = r.builder.build(&r.params)
	}

	n := len(s.Points)
	start := int(e.sampleIndex.Load())
	total := e.totalSamples.Load()
	r.scratch = r.scratch[:0]
	for i := 0; i < frames; i++ {
		p := s.Points[(start+i)%n]
		t := float64(total+uint64(i)) / r.sampleRate
		x, y := chain.Apply(p.X, p.Y, t)
		r.writeFrame(buf[i*r.frameSize:], x, y)
		if (start+i)%r.decimation == 0 {
			r.scratch = append(r.scratch, Point{X: x, Y: y})
			if len(r.scratch) == cap(r.scratch) {
				e.buffer.PushSlice(r.scratch)
				r.scratch = r.scratch[:0]
			}
		}
	}
	e.buffer.PushSlice(r.scratch)
	e.sampleIndex.Store(int64((start + frames) % n))
	e.totalSamples.Store(total + uint64(frames))
}

func (r *renderer) writeFrame(frame []byte, x, y float64) {
	if r.channels == 1 {
		putSample(frame, r.format, (x+y)/2)
		return
	}
	putSample(frame, r.format, x)
	putSample(frame[r.sampleSize:], r.format, y)
	for ch := 2; ch < r.channels; ch++ {
		putSample(frame[ch*r.sampleSize:], r.format, 0)
	}
}
