package audio

import (
	"encoding/json"
	"log"
	"math"
	"strconv"

	"github.com/jinjor/desktop-oscilloscope/src/effect"
	"github.com/pkg/errors"
)

// ----- Ranges ----- //

type paramRange struct {
	min float64
	max float64
}

var (
	rangeFrequency     = paramRange{20, 200}
	rangeVolume        = paramRange{0, 1}
	rangeRotationSpeed = paramRange{-5, 5}
	rangeLfoFreq       = paramRange{0.1, 10}
	rangeLfoMin        = paramRange{0.1, 1.5}
	rangeLfoMax        = paramRange{0.5, 2.0}
	rangeOffset        = paramRange{-1, 1}
)

func clampRange(v float64, r paramRange) float64 {
	return math.Max(r.min, math.Min(r.max, v))
}

func errUnknownKey(group, key string) error {
	return errors.Errorf("unknown %s parameter %q", group, key)
}

// ----- Effect Params ----- //

// EffectParams is the scalar description of the effect chain. The audio
// goroutine rebuilds its chain from a copy on every buffer.
type EffectParams struct {
	RotationEnabled bool
	RotationSpeed   float64 // rad/s
	RotationAngle   float64 // rad
	Lfo             LfoParams
	Mirror          effect.Axis
	OffsetX         float64
	OffsetY         float64
}

type effectParamsJSON struct {
	Rotation rotationJSON    `json:"rotation"`
	Lfo      json.RawMessage `json:"lfo"`
	Mirror   string          `json:"mirror"`
	Offset   [2]float64      `json:"offset"`
}

type rotationJSON struct {
	Enabled bool    `json:"enabled"`
	Speed   float64 `json:"speed"`
	Angle   float64 `json:"angle"`
}

// NewEffectParams returns params that leave the shape untouched.
func NewEffectParams() EffectParams {
	return EffectParams{
		Lfo: NewLfoParams(),
	}
}

func (p *EffectParams) applyJSON(data json.RawMessage) {
	if len(data) == 0 {
		return
	}
	var j effectParamsJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to effect params")
		return
	}
	p.RotationEnabled = j.Rotation.Enabled
	p.RotationSpeed = j.Rotation.Speed
	p.RotationAngle = j.Rotation.Angle
	p.Lfo.applyJSON(j.Lfo)
	p.Mirror = effect.AxisFromString(j.Mirror)
	p.OffsetX = j.Offset[0]
	p.OffsetY = j.Offset[1]
}

func (p *EffectParams) toJSON() json.RawMessage {
	return toRawMessage(&effectParamsJSON{
		Rotation: rotationJSON{
			Enabled: p.RotationEnabled,
			Speed:   p.RotationSpeed,
			Angle:   p.RotationAngle,
		},
		Lfo:    p.Lfo.toJSON(),
		Mirror: p.Mirror.String(),
		Offset: [2]float64{p.OffsetX, p.OffsetY},
	})
}

func (p *EffectParams) setRotation(key string, value string) error {
	switch key {
	case "enabled":
		p.RotationEnabled = value == "true"
	case "speed":
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		p.RotationSpeed = clampRange(value, rangeRotationSpeed)
	case "angle":
		value, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		p.RotationAngle = value
	default:
		return errUnknownKey("rotation", key)
	}
	return nil
}

func (p *EffectParams) setOffset(key string, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch key {
	case "x":
		p.OffsetX = clampRange(v, rangeOffset)
	case "y":
		p.OffsetY = clampRange(v, rangeOffset)
	default:
		return errUnknownKey("offset", key)
	}
	return nil
}

// ----- Chain Builder ----- //

// chainBuilder owns one instance of every effect so that building a chain
// does not allocate.
type chainBuilder struct {
	rotate       effect.Rotate
	lfoScale     effect.LfoScale
	lfoRotate    effect.LfoRotate
	lfoTranslate effect.LfoTranslate
	mirror       effect.Mirror
	offset       effect.Translate
	chain        effect.Chain
}

func (b *chainBuilder) build(p *EffectParams) *effect.Chain {
	b.chain.Reset()
	if p.RotationEnabled && (p.RotationSpeed != 0 || p.RotationAngle != 0) {
		b.rotate.Angle = p.RotationAngle
		b.rotate.Speed = p.RotationSpeed
		b.chain.Add(&b.rotate)
	}
	if p.Lfo.Enabled {
		lfo := p.Lfo.lfo()
		switch p.Lfo.Destination {
		case DestScale:
			b.lfoScale.Lfo = lfo
			b.chain.Add(&b.lfoScale)
		case DestRotate:
			b.lfoRotate.Lfo = lfo
			b.chain.Add(&b.lfoRotate)
		case DestTranslate:
			b.lfoTranslate.X = lfo
			b.lfoTranslate.Y = lfo
			b.lfoTranslate.Y.Phase = 0.25
			b.chain.Add(&b.lfoTranslate)
		}
	}
	if p.Mirror != effect.AxisNone {
		b.mirror.Axis = p.Mirror
		b.chain.Add(&b.mirror)
	}
	if p.OffsetX != 0 || p.OffsetY != 0 {
		b.offset.X = p.OffsetX
		b.offset.Y = p.OffsetY
		b.chain.Add(&b.offset)
	}
	return &b.chain
}
