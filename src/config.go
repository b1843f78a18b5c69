package main

import (
	"fmt"
	"log"

	"github.com/integrii/flaggy"
	"github.com/jinjor/desktop-oscilloscope/src/audio"
	"github.com/jinjor/desktop-oscilloscope/src/device"
	"github.com/pkg/errors"
)

// AppName is the app name
const AppName = "desktop-oscilloscope"

// AppDesc is the app description
const AppDesc = "Draws shapes on an XY oscilloscope through the sound card"

const sockFileName = "/tmp/desktop-oscilloscope.sock"

var version = "unknown"

type config struct {
	// Backend is the backend name from list-backends
	backend string
	// Device is the device name from list-devices
	device string
	// SampleRate is asked of devices that can choose their rate
	sampleRate int
	// Frequency is the number of traces per second
	frequency float64
	volume    float64
	// Capacity is the number of points kept for the display
	capacity int
	// Decimation keeps one point out of this many frames for the display
	decimation int
	socket     string
	presets    string
	// Midi is a part of the MIDI input name. "-" disables MIDI.
	midi string
	// Scope draws the trace on the terminal
	scope bool
	// Headless plays without waiting for an IPC client
	headless bool
}

func newZeroConfig() config {
	return config{
		backend:    defaultBackend,
		sampleRate: device.PreferredSampleRate,
		frequency:  audio.DefaultFrequency,
		volume:     audio.DefaultVolume,
		capacity:   audio.DefaultBufferCapacity,
		decimation: audio.DefaultDecimation,
		socket:     sockFileName,
		presets:    audio.DefaultPresetDir,
	}
}

func (cfg *config) validate() error {
	switch {
	case cfg.sampleRate < 8000:
		return errors.New("sample rate too low (8000 min)")
	case cfg.sampleRate > 384000:
		return errors.New("sample rate too high (384000 max)")
	case cfg.frequency < 20 || cfg.frequency > 200:
		return errors.New("frequency out of range (20-200)")
	case cfg.volume < 0 || cfg.volume > 1:
		return errors.New("volume out of range (0-1)")
	case cfg.capacity < 16:
		return errors.New("capacity too small (16 min)")
	case cfg.decimation < 1:
		return errors.New("decimation too small (1 min)")
	case cfg.socket == "" && !cfg.headless:
		return errors.New("socket path required unless headless")
	}
	return nil
}

func doFlags(cfg *config) bool {
	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:        "list-backends",
		ShortName:   "lb",
		Description: "list all supported backends",
	}
	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:        "list-devices",
		ShortName:   "ld",
		Description: "list all devices for a backend",
	}
	parser.AttachSubcommand(&listDevicesCmd, 1)

	listMidiCmd := flaggy.Subcommand{
		Name:        "list-midi",
		ShortName:   "lm",
		Description: "list all MIDI inputs",
	}
	parser.AttachSubcommand(&listMidiCmd, 1)

	parser.String(&cfg.backend, "b", "backend", "backend name")
	parser.String(&cfg.device, "d", "device", "device name")
	parser.Int(&cfg.sampleRate, "r", "rate", "preferred sample rate")
	parser.Float64(&cfg.frequency, "f", "frequency", "trace frequency in Hz (20-200)")
	parser.Float64(&cfg.volume, "v", "volume", "volume (0-1)")
	parser.Int(&cfg.capacity, "c", "capacity", "number of points kept for the display")
	parser.Int(&cfg.decimation, "k", "decimation", "keep one point every k frames for the display")
	parser.String(&cfg.socket, "", "socket", "IPC socket path")
	parser.String(&cfg.presets, "", "presets", "preset directory")
	parser.String(&cfg.midi, "m", "midi", "MIDI input name ('-' to disable)")
	parser.Bool(&cfg.scope, "s", "scope", "draw the trace on the terminal")
	parser.Bool(&cfg.headless, "", "headless", "start playing without an IPC client")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listBackendsCmd.Used:
		for _, name := range device.Backends() {
			fmt.Printf("- %s\n", name)
		}
		return true

	case listDevicesCmd.Used:
		device.PreferredSampleRate = cfg.sampleRate
		backend, err := device.Lookup(cfg.backend)
		chk(err, "failed to init backend")

		devices, err := backend.Devices()
		chk(err, "failed to get devices")

		defaultDevice, _ := backend.DefaultDevice()

		fmt.Printf("all devices for %q backend. '*' marks default\n", cfg.backend)

		for _, d := range devices {
			star := ' '
			if defaultDevice != nil && d.Name() == defaultDevice.Name() {
				star = '*'
			}
			c, err := d.Config()
			if err != nil {
				fmt.Printf("- %s %c (%v)\n", d.Name(), star, err)
				continue
			}
			fmt.Printf("- %s %c %v\n", d.Name(), star, c)
		}
		return true

	case listMidiCmd.Used:
		names, err := audio.MidiInputs()
		chk(err, "failed to list MIDI inputs")
		for _, name := range names {
			fmt.Printf("- %s\n", name)
		}
		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
