package device

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrNoDevice is returned when a backend has no output device.
	ErrNoDevice = errors.New("no output device available")
	// ErrUnknownBackend ...
	ErrUnknownBackend = errors.New("unknown backend")
)

// ----- Format ----- //

// Format is the sample encoding of a stream.
type Format int

// Formats
const (
	FormatFloat32 Format = iota
	FormatInt16
	FormatUint16
	FormatUint8
)

// BytesPerSample ...
func (f Format) BytesPerSample() int {
	switch f {
	case FormatFloat32:
		return 4
	case FormatInt16, FormatUint16:
		return 2
	case FormatUint8:
		return 1
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case FormatFloat32:
		return "f32"
	case FormatInt16:
		return "i16"
	case FormatUint16:
		return "u16"
	case FormatUint8:
		return "u8"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// FormatFromString ...
func FormatFromString(s string) (Format, error) {
	switch s {
	case "f32", "float32":
		return FormatFloat32, nil
	case "i16", "int16":
		return FormatInt16, nil
	case "u16", "uint16":
		return FormatUint16, nil
	case "u8", "uint8":
		return FormatUint8, nil
	}
	return 0, errors.Errorf("unknown sample format %q", s)
}

// ----- Config ----- //

// Config describes a stream.
type Config struct {
	SampleRate   int
	Channels     int
	Format       Format
	BufferFrames int
}

// BytesPerFrame ...
func (c Config) BytesPerFrame() int {
	return c.Channels * c.Format.BytesPerSample()
}

func (c Config) String() string {
	return fmt.Sprintf("%dHz %dch %v", c.SampleRate, c.Channels, c.Format)
}

// ----- Interfaces ----- //

// Stream is an open output. Close stops further reads from its source.
type Stream interface {
	Play() error
	Close() error
}

// Device is an output endpoint.
type Device interface {
	Name() string
	// Config is the native configuration of the device.
	Config() (Config, error)
	// Open builds a stream pulling bytes encoded per cfg from src.
	// Asynchronous errors are reported to onErr.
	Open(cfg Config, src io.Reader, onErr func(error)) (Stream, error)
}

// Backend provides devices.
type Backend interface {
	Devices() ([]Device, error)
	DefaultDevice() (Device, error)
}

// ----- Registry ----- //

var (
	backendsMu sync.RWMutex
	backends   = map[string]Backend{}
)

// Register makes a backend available by name. Most packages call it on init().
func Register(name string, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = b
}

// Lookup ...
func Lookup(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "%q; check list-backends", name)
	}
	return b, nil
}

// Backends returns the registered backend names in order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Find returns the named device of a backend, or its default device when name is empty.
func Find(b Backend, name string) (Device, error) {
	if name == "" {
		d, err := b.DefaultDevice()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get default device")
		}
		return d, nil
	}
	devices, err := b.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get devices")
	}
	for _, d := range devices {
		if d.Name() == name {
			return d, nil
		}
	}
	return nil, errors.Wrapf(ErrNoDevice, "device %q not found; check list-devices", name)
}
