package audio

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/jinjor/desktop-oscilloscope/src/effect"
)

// ----- LFO Params ----- //

// LfoParams configures the modulation LFO.
type LfoParams struct {
	Enabled     bool
	Destination Destination
	Wave        effect.Wave
	Freq        float64 // Hz
	Min         float64
	Max         float64
}

type lfoJSON struct {
	Enabled     bool    `json:"enabled"`
	Destination string  `json:"destination"`
	Wave        string  `json:"wave"`
	Freq        float64 `json:"freq"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// NewLfoParams returns a disabled LFO breathing the scale between 0.8 and 1.2.
func NewLfoParams() LfoParams {
	return LfoParams{
		Enabled:     false,
		Destination: DestScale,
		Wave:        effect.WaveSine,
		Freq:        1.0,
		Min:         0.8,
		Max:         1.2,
	}
}

func (l *LfoParams) applyJSON(data json.RawMessage) {
	if len(data) == 0 {
		return
	}
	var j lfoJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to lfoParams")
		return
	}
	l.Enabled = j.Enabled
	l.Destination = DestinationFromString(j.Destination)
	l.Wave = effect.WaveFromString(j.Wave)
	l.Freq = j.Freq
	l.Min = j.Min
	l.Max = j.Max
}

func (l *LfoParams) toJSON() json.RawMessage {
	return toRawMessage(&lfoJSON{
		Enabled:     l.Enabled,
		Destination: l.Destination.String(),
		Wave:        l.Wave.String(),
		Freq:        l.Freq,
		Min:         l.Min,
		Max:         l.Max,
	})
}

func (l *LfoParams) set(key string, value string) error {
	switch key {
	case "enabled":
		l.Enabled = value == "true"
	case "destination":
		l.Destination = DestinationFromString(value)
	case "wave":
		l.Wave = effect.WaveFromString(value)
	case "freq":
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		l.Freq = clampRange(value, rangeLfoFreq)
	case "min":
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		l.Min = value
	case "max":
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		l.Max = value
	default:
		return errUnknownKey("lfo", key)
	}
	return nil
}

func (l *LfoParams) lfo() effect.Lfo {
	return effect.NewLfo(l.Freq, l.Min, l.Max, l.Wave)
}
