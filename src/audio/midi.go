package audio

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

// ----- MIDI Param ----- //

// MidiParam is a value a MIDI controller can drive.
type MidiParam int

// MIDI params
const (
	ParamFrequency MidiParam = iota
	ParamVolume
	ParamRotationSpeed
	ParamLfoFreq
	ParamLfoMin
	ParamLfoMax
	ParamIntensity
	ParamPersistence
	ParamZoom
)

// MidiParams lists every param in display order.
var MidiParams = []MidiParam{
	ParamFrequency,
	ParamVolume,
	ParamRotationSpeed,
	ParamLfoFreq,
	ParamLfoMin,
	ParamLfoMax,
	ParamIntensity,
	ParamPersistence,
	ParamZoom,
}

var midiParamNames = [...]string{
	ParamFrequency:     "frequency",
	ParamVolume:        "volume",
	ParamRotationSpeed: "rotation_speed",
	ParamLfoFreq:       "lfo_freq",
	ParamLfoMin:        "lfo_min",
	ParamLfoMax:        "lfo_max",
	ParamIntensity:     "intensity",
	ParamPersistence:   "persistence",
	ParamZoom:          "zoom",
}

var midiParamRanges = [...]paramRange{
	ParamFrequency:     rangeFrequency,
	ParamVolume:        rangeVolume,
	ParamRotationSpeed: rangeRotationSpeed,
	ParamLfoFreq:       rangeLfoFreq,
	ParamLfoMin:        rangeLfoMin,
	ParamLfoMax:        rangeLfoMax,
	ParamIntensity:     {0.1, 1.0},
	ParamPersistence:   {0, 0.99},
	ParamZoom:          {0.1, 2.0},
}

// MidiParamFromString ...
func MidiParamFromString(s string) (MidiParam, error) {
	for p, name := range midiParamNames {
		if name == s {
			return MidiParam(p), nil
		}
	}
	return 0, errors.Errorf("unknown MIDI param %q", s)
}

func (p MidiParam) String() string {
	if p < 0 || int(p) >= len(midiParamNames) {
		return "unknown"
	}
	return midiParamNames[p]
}

// Map converts a controller value 0-127 linearly into the param's range.
func (p MidiParam) Map(value uint8) float64 {
	if value > 127 {
		value = 127
	}
	r := midiParamRanges[p]
	return r.min + float64(value)/127*(r.max-r.min)
}

// MidiMapping binds a CC number to a param.
type MidiMapping struct {
	CC    uint8
	Param MidiParam
}

// MidiUpdate is a mapped value ready to apply.
type MidiUpdate struct {
	Param MidiParam
	Value float64
}

// ----- CC Values ----- //

// ccValues is written by the MIDI listener and polled by the control loop.
type ccValues struct {
	values  [128]atomic.Uint32
	changed [128]atomic.Bool
}

func (c *ccValues) set(cc, value uint8) {
	c.values[cc&0x7F].Store(uint32(value & 0x7F))
	c.changed[cc&0x7F].Store(true)
}

func (c *ccValues) poll(cc uint8) (uint8, bool) {
	if !c.changed[cc&0x7F].Swap(false) {
		return 0, false
	}
	return uint8(c.values[cc&0x7F].Load()), true
}

// ----- MIDI Controller ----- //

// MidiController turns control change messages into param updates.
// HandleMessage may be called from any goroutine; everything else belongs to the control loop.
type MidiController struct {
	cc       ccValues
	mappings []MidiMapping
	learning int // mapping index, -1 when not learning
}

// NewMidiController ...
func NewMidiController() *MidiController {
	return &MidiController{learning: -1}
}

// HandleMessage records a control change. Other messages are ignored.
func (m *MidiController) HandleMessage(data []byte) {
	if len(data) == 3 && data[0]&0xF0 == 0xB0 {
		m.cc.set(data[1], data[2])
	}
}

// Poll returns the updates for mapped CCs changed since the last poll.
// In learn mode the first changed CC is bound to the mapping being learned instead.
func (m *MidiController) Poll() []MidiUpdate {
	if m.learning >= 0 {
		for cc := 0; cc < 128; cc++ {
			if _, ok := m.cc.poll(uint8(cc)); ok {
				if m.learning < len(m.mappings) {
					m.mappings[m.learning].CC = uint8(cc)
					log.Printf("MIDI learn: CC %d -> %v\n", cc, m.mappings[m.learning].Param)
				}
				m.learning = -1
				return nil
			}
		}
		return nil
	}
	var updates []MidiUpdate
	for _, mapping := range m.mappings {
		if value, ok := m.cc.poll(mapping.CC); ok {
			updates = append(updates, MidiUpdate{Param: mapping.Param, Value: mapping.Param.Map(value)})
		}
	}
	return updates
}

// AddMapping ...
func (m *MidiController) AddMapping(cc uint8, p MidiParam) {
	m.mappings = append(m.mappings, MidiMapping{CC: cc & 0x7F, Param: p})
}

// RemoveMapping ...
func (m *MidiController) RemoveMapping(i int) bool {
	if i < 0 || i >= len(m.mappings) {
		return false
	}
	m.mappings = append(m.mappings[:i], m.mappings[i+1:]...)
	if m.learning == i {
		m.learning = -1
	} else if m.learning > i {
		m.learning--
	}
	return true
}

// StartLearn binds the next moved CC to mapping i.
func (m *MidiController) StartLearn(i int) bool {
	if i < 0 || i >= len(m.mappings) {
		return false
	}
	m.learning = i
	return true
}

// CancelLearn ...
func (m *MidiController) CancelLearn() {
	m.learning = -1
}

// Learning reports the mapping index being learned.
func (m *MidiController) Learning() (int, bool) {
	return m.learning, m.learning >= 0
}

// Mappings returns a copy of the mappings.
func (m *MidiController) Mappings() []MidiMapping {
	return append([]MidiMapping(nil), m.mappings...)
}

// SetMappings ...
func (m *MidiController) SetMappings(mappings []MidiMapping) {
	m.mappings = append(m.mappings[:0], mappings...)
	m.learning = -1
}

// ----- MIDI IN ----- //

// MidiInputs lists the names of the MIDI input ports.
func MidiInputs() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize MIDI driver")
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get MIDI IN")
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

func selectInput(ins []midi.In, name string) midi.In {
	if len(ins) == 0 {
		return nil
	}
	if name == "" {
		return ins[0]
	}
	for _, in := range ins {
		if strings.Contains(in.String(), name) {
			return in
		}
	}
	return nil
}

// ListenToMidiIn streams raw messages from the input whose name contains port
// (the first input when port is empty) until ctx is done.
func ListenToMidiIn(ctx context.Context, port string) <-chan []byte {
	ch := make(chan []byte, 1024)
	go func() {
		defer close(ch)
		var drv midi.Driver
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		in := selectInput(ins, port)
		if in == nil {
			log.Println("WARN: MIDI IN not found")
			return
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := append([]byte(nil), data...)
			select {
			case ch <- msg:
			default:
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}
