package audio

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jinjor/desktop-oscilloscope/src/curve"
	"github.com/jinjor/desktop-oscilloscope/src/effect"
	"github.com/pkg/errors"
)

// TickRate is the control loop frequency in Hz.
const TickRate = 60

// ----- Changes ----- //

// Changes is a set of keys whose state changed since last reported.
type Changes struct {
	sync.Mutex
	dict map[string]struct{}
}

// NewChanges ...
func NewChanges() *Changes {
	return &Changes{dict: make(map[string]struct{})}
}

// Add ...
func (c *Changes) Add(key string) {
	c.Lock()
	c.dict[key] = struct{}{}
	c.Unlock()
}

// Has ...
func (c *Changes) Has(key string) bool {
	c.Lock()
	_, ok := c.dict[key]
	c.Unlock()
	return ok
}

// Delete ...
func (c *Changes) Delete(key string) {
	c.Lock()
	delete(c.dict, key)
	c.Unlock()
}

// Take reports whether key was set and clears it.
func (c *Changes) Take(key string) bool {
	c.Lock()
	_, ok := c.dict[key]
	delete(c.dict, key)
	c.Unlock()
	return ok
}

// ----- Display Settings ----- //

// DisplaySettings configures the scope view.
type DisplaySettings struct {
	Intensity   float64 `json:"intensity"`
	Persistence float64 `json:"persistence"`
	Zoom        float64 `json:"zoom"`
	Graticule   bool    `json:"graticule"`
}

// NewDisplaySettings ...
func NewDisplaySettings() DisplaySettings {
	return DisplaySettings{Intensity: 1.0, Persistence: 0.85, Zoom: 1.0, Graticule: true}
}

func (d *DisplaySettings) set(key string, value string) error {
	if key == "graticule" {
		d.Graticule = value == "true"
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch key {
	case "intensity":
		d.Intensity = clampRange(v, midiParamRanges[ParamIntensity])
	case "persistence":
		d.Persistence = clampRange(v, midiParamRanges[ParamPersistence])
	case "zoom":
		d.Zoom = clampRange(v, midiParamRanges[ParamZoom])
	default:
		return errUnknownKey("display", key)
	}
	return nil
}

// ----- Controller ----- //

// ControllerConfig ...
type ControllerConfig struct {
	Frequency float64
	Volume    float64
	PresetDir string
}

// Controller owns the user-facing state and is the only caller of the Engine setters.
// Commands and MIDI updates mark state dirty; Tick pushes it to the Engine.
type Controller struct {
	CommandCh chan []string
	Changes   *Changes

	mu           sync.Mutex
	engine       *Engine
	midi         *MidiController
	presets      *presetManager
	frequency    float64
	volume       float64
	shape        ShapeSpec
	scene        []SceneEntrySpec
	curve        curve.Curve
	effects      EffectParams
	display      DisplaySettings
	dirtyShape   bool
	dirtyEffects bool
	presetList   []string
}

type settingsJSON struct {
	Frequency float64           `json:"frequency"`
	Volume    float64           `json:"volume"`
	Shape     ShapeSpec         `json:"shape"`
	Scene     []SceneEntrySpec  `json:"scene"`
	Effects   json.RawMessage   `json:"effects"`
	Display   DisplaySettings   `json:"display"`
	Midi      []midiMappingJSON `json:"midi"`
}

type midiMappingJSON struct {
	CC    uint8  `json:"cc"`
	Param string `json:"param"`
}

// NewController starts with a circle and the default effect settings.
func NewController(engine *Engine, cfg ControllerConfig) (*Controller, error) {
	presets, err := newPresetManager(cfg.PresetDir)
	if err != nil {
		return nil, err
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultFrequency
	}
	if cfg.Volume == 0 {
		cfg.Volume = DefaultVolume
	}
	c := &Controller{
		CommandCh: make(chan []string, 256),
		Changes:   NewChanges(),
		engine:    engine,
		midi:      NewMidiController(),
		presets:   presets,
		frequency: clampRange(cfg.Frequency, rangeFrequency),
		volume:    clampRange(cfg.Volume, rangeVolume),
		shape:     ShapeSpec{Kind: "circle"},
		effects:   NewEffectParams(),
		display:   NewDisplaySettings(),
	}
	if err := c.rebuildCurve(); err != nil {
		return nil, err
	}
	c.dirtyEffects = true
	return c, nil
}

// Run processes commands, MIDI messages and ticks until ctx is done.
func (c *Controller) Run(ctx context.Context, midiIn <-chan []byte) error {
	t := time.NewTicker(time.Second / TickRate)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Controller.Run() interrupted")
			return nil
		case command, ok := <-c.CommandCh:
			if !ok {
				log.Println("Controller.Run() ended.")
				return nil
			}
			if err := c.update(command); err != nil {
				log.Printf("command %v failed: %v\n", command, err)
				c.Changes.Add("error")
			}
		case data, ok := <-midiIn:
			if !ok {
				midiIn = nil
				continue
			}
			c.midi.HandleMessage(data)
		case <-t.C:
			c.Tick()
		}
	}
}

// Tick applies MIDI updates and pushes dirty state to the engine.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.midi.Poll() {
		c.applyMidi(u)
	}
	c.flush()
}

func (c *Controller) flush() {
	if c.dirtyShape {
		c.engine.SetShape(c.curve, c.frequency, c.engine.SampleRate(), c.volume)
		c.dirtyShape = false
		c.Changes.Add("shape")
		c.Changes.Add("status")
	}
	if c.dirtyEffects {
		c.engine.SetEffects(c.effects)
		c.dirtyEffects = false
		c.Changes.Add("effects")
	}
}

func (c *Controller) applyMidi(u MidiUpdate) {
	switch u.Param {
	case ParamFrequency:
		c.frequency = u.Value
		c.dirtyShape = true
	case ParamVolume:
		c.volume = u.Value
		c.dirtyShape = true
	case ParamRotationSpeed:
		c.effects.RotationSpeed = u.Value
		c.dirtyEffects = true
	case ParamLfoFreq:
		c.effects.Lfo.Freq = u.Value
		c.dirtyEffects = true
	case ParamLfoMin:
		c.effects.Lfo.Min = u.Value
		c.dirtyEffects = true
	case ParamLfoMax:
		c.effects.Lfo.Max = u.Value
		c.dirtyEffects = true
	case ParamIntensity:
		c.display.Intensity = u.Value
		c.Changes.Add("display")
	case ParamPersistence:
		c.display.Persistence = u.Value
		c.Changes.Add("display")
	case ParamZoom:
		c.display.Zoom = u.Value
		c.Changes.Add("display")
	}
}

func (c *Controller) rebuildCurve() error {
	var cv curve.Curve
	var err error
	if c.shape.Kind == "scene" {
		cv, err = buildScene(c.scene)
	} else {
		cv, err = c.shape.Build()
	}
	if err != nil {
		return err
	}
	c.curve = cv
	c.dirtyShape = true
	return nil
}

func expectArgs(command []string, n int) error {
	if len(command) != n {
		return errors.Errorf("expected %d arguments, but got %v", n, command)
	}
	return nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid index %q", s)
	}
	return i, nil
}

func (c *Controller) update(command []string) error {
	if len(command) == 0 {
		return errors.New("empty command")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch command[0] {
	case "start":
		c.flush()
		defer c.Changes.Add("status")
		return c.engine.Start()
	case "stop":
		c.engine.Stop()
		c.Changes.Add("status")
	case "toggle":
		c.flush()
		defer c.Changes.Add("status")
		return c.engine.Toggle()
	case "shape":
		if len(command) < 2 {
			return errors.New("shape needs a kind")
		}
		prev := c.shape
		c.shape = ShapeSpec{Kind: command[1], Args: command[2:]}
		if err := c.rebuildCurve(); err != nil {
			c.shape = prev
			return err
		}
	case "scene":
		return c.updateScene(command[1:])
	case "set":
		return c.set(command[1:])
	case "midi":
		return c.updateMidi(command[1:])
	case "preset":
		return c.updatePreset(command[1:])
	default:
		return errors.Errorf("unknown command %q", command[0])
	}
	return nil
}

func (c *Controller) set(command []string) error {
	if len(command) == 0 {
		return errors.New("set needs a target")
	}
	switch command[0] {
	case "frequency", "volume":
		if err := expectArgs(command, 2); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(command[1], 64)
		if err != nil {
			return err
		}
		if command[0] == "frequency" {
			c.frequency = clampRange(v, rangeFrequency)
		} else {
			c.volume = clampRange(v, rangeVolume)
		}
		c.dirtyShape = true
		return nil
	case "mirror":
		if err := expectArgs(command, 2); err != nil {
			return err
		}
		c.effects.Mirror = effect.AxisFromString(command[1])
		c.dirtyEffects = true
		return nil
	}
	if err := expectArgs(command, 3); err != nil {
		return err
	}
	var err error
	switch command[0] {
	case "rotation":
		err = c.effects.setRotation(command[1], command[2])
	case "lfo":
		err = c.effects.Lfo.set(command[1], command[2])
	case "offset":
		err = c.effects.setOffset(command[1], command[2])
	case "display":
		err = c.display.set(command[1], command[2])
		c.Changes.Add("display")
		return err
	default:
		return errors.Errorf("unknown target %q", command[0])
	}
	if err != nil {
		return err
	}
	c.dirtyEffects = true
	return nil
}

func (c *Controller) updateScene(command []string) error {
	if len(command) == 0 {
		return errors.New("scene needs a subcommand")
	}
	entries := append([]SceneEntrySpec(nil), c.scene...)
	switch command[0] {
	case "add":
		if len(command) < 2 {
			return errors.New("scene add needs a kind")
		}
		spec := ShapeSpec{Kind: command[1], Args: command[2:]}
		if _, err := spec.Build(); err != nil {
			return err
		}
		entries = append(entries, SceneEntrySpec{Shape: spec, Weight: 1, Enabled: true})
	case "clear":
		entries = nil
	default:
		if len(command) < 2 {
			return errors.Errorf("scene %s needs an index", command[0])
		}
		i, err := parseIndex(command[1])
		if err != nil {
			return err
		}
		if i < 0 || i >= len(entries) {
			return errors.Errorf("scene index %d out of range", i)
		}
		switch command[0] {
		case "remove":
			entries = append(entries[:i], entries[i+1:]...)
		case "up":
			if i > 0 {
				entries[i], entries[i-1] = entries[i-1], entries[i]
			}
		case "down":
			if i+1 < len(entries) {
				entries[i], entries[i+1] = entries[i+1], entries[i]
			}
		case "weight":
			if err := expectArgs(command, 3); err != nil {
				return err
			}
			w, err := strconv.ParseFloat(command[2], 64)
			if err != nil {
				return err
			}
			entries[i].Weight = w
		case "enable":
			if err := expectArgs(command, 3); err != nil {
				return err
			}
			entries[i].Enabled = command[2] == "true"
		default:
			return errors.Errorf("unknown scene subcommand %q", command[0])
		}
	}
	c.scene = entries
	if c.shape.Kind == "scene" {
		return c.rebuildCurve()
	}
	return nil
}

func (c *Controller) updateMidi(command []string) error {
	if len(command) == 0 {
		return errors.New("midi needs a subcommand")
	}
	switch command[0] {
	case "map":
		if err := expectArgs(command, 3); err != nil {
			return err
		}
		cc, err := strconv.ParseUint(command[1], 10, 7)
		if err != nil {
			return errors.Wrapf(err, "invalid CC %q", command[1])
		}
		p, err := MidiParamFromString(command[2])
		if err != nil {
			return err
		}
		c.midi.AddMapping(uint8(cc), p)
	case "unmap", "learn":
		if err := expectArgs(command, 2); err != nil {
			return err
		}
		i, err := parseIndex(command[1])
		if err != nil {
			return err
		}
		ok := false
		if command[0] == "unmap" {
			ok = c.midi.RemoveMapping(i)
		} else {
			ok = c.midi.StartLearn(i)
		}
		if !ok {
			return errors.Errorf("MIDI mapping %d not found", i)
		}
	case "cancel":
		c.midi.CancelLearn()
	default:
		return errors.Errorf("unknown midi subcommand %q", command[0])
	}
	c.Changes.Add("midi")
	return nil
}

func (c *Controller) updatePreset(command []string) error {
	if len(command) == 1 && command[0] == "list" {
		list, err := c.presets.getList()
		if err != nil {
			return err
		}
		c.presetList = list
		c.Changes.Add("presets")
		return nil
	}
	if err := expectArgs(command, 2); err != nil {
		return err
	}
	switch command[0] {
	case "save":
		if err := c.presets.save(command[1], c.toJSON()); err != nil {
			return err
		}
		log.Printf("preset saved: %s\n", command[1])
	case "load":
		data, err := c.presets.load(command[1])
		if err != nil {
			return err
		}
		if err := c.applyJSON(data); err != nil {
			return err
		}
		log.Printf("preset loaded: %s\n", command[1])
	default:
		return errors.Errorf("unknown preset subcommand %q", command[0])
	}
	list, err := c.presets.getList()
	if err == nil {
		c.presetList = list
		c.Changes.Add("presets")
	}
	return nil
}

// ----- JSON ----- //

// ApplyJSON restores settings saved by ToJSON.
func (c *Controller) ApplyJSON(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyJSON(data)
}

// ToJSON ...
func (c *Controller) ToJSON() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toJSON()
}

// LoadSession restores the settings saved by SaveSession. Nothing happens on the first run.
func (c *Controller) LoadSession() error {
	data, err := c.presets.loadLast()
	if err != nil || data == nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.applyJSON(data); err != nil {
		return errors.Wrap(err, "failed to restore last session")
	}
	log.Println("last session restored")
	return nil
}

// SaveSession writes the current settings for the next run.
func (c *Controller) SaveSession() error {
	return c.presets.saveLast(c.ToJSON())
}

// applyJSON replaces the settings. Keys missing from data keep their current values.
func (c *Controller) applyJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return errors.Wrap(err, "failed to apply JSON to settings")
	}
	j := settingsJSON{
		Frequency: c.frequency,
		Volume:    c.volume,
		Display:   c.display,
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return errors.Wrap(err, "failed to apply JSON to settings")
	}
	prevShape, prevScene := c.shape, c.scene
	if _, ok := keys["shape"]; ok {
		c.shape = j.Shape
	}
	if _, ok := keys["scene"]; ok {
		c.scene = j.Scene
	}
	if err := c.rebuildCurve(); err != nil {
		c.shape, c.scene = prevShape, prevScene
		return err
	}
	if j.Frequency > 0 {
		c.frequency = clampRange(j.Frequency, rangeFrequency)
	}
	c.volume = clampRange(j.Volume, rangeVolume)
	if _, ok := keys["effects"]; ok {
		c.effects = NewEffectParams()
		c.effects.applyJSON(j.Effects)
		c.dirtyEffects = true
	}
	c.display = DisplaySettings{
		Intensity:   clampRange(j.Display.Intensity, midiParamRanges[ParamIntensity]),
		Persistence: clampRange(j.Display.Persistence, midiParamRanges[ParamPersistence]),
		Zoom:        clampRange(j.Display.Zoom, midiParamRanges[ParamZoom]),
		Graticule:   j.Display.Graticule,
	}
	if _, ok := keys["midi"]; ok {
		mappings := make([]MidiMapping, 0, len(j.Midi))
		for _, m := range j.Midi {
			p, err := MidiParamFromString(m.Param)
			if err != nil {
				log.Printf("skipping MIDI mapping: %v\n", err)
				continue
			}
			mappings = append(mappings, MidiMapping{CC: m.CC & 0x7F, Param: p})
		}
		c.midi.SetMappings(mappings)
		c.Changes.Add("midi")
	}
	c.dirtyShape = true
	c.Changes.Add("display")
	return nil
}

func (c *Controller) toJSON() []byte {
	mappings := c.midi.Mappings()
	midiJSON := make([]midiMappingJSON, len(mappings))
	for i, m := range mappings {
		midiJSON[i] = midiMappingJSON{CC: m.CC, Param: m.Param.String()}
	}
	return toRawMessage(&settingsJSON{
		Frequency: c.frequency,
		Volume:    c.volume,
		Shape:     c.shape,
		Scene:     c.scene,
		Effects:   c.effects.toJSON(),
		Display:   c.display,
		Midi:      midiJSON,
	})
}

// ----- Reports ----- //

// Display returns the scope settings.
func (c *Controller) Display() DisplaySettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Reports drains the change set into report lines.
func (c *Controller) Reports() []string {
	var lines []string
	status := c.Changes.Take("status")
	failed := c.Changes.Take("error")
	if status || failed {
		lines = append(lines, "status "+url.QueryEscape(c.engine.Status()))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Changes.Take("effects") {
		lines = append(lines, "effects "+url.QueryEscape(string(c.effects.toJSON())))
	}
	if c.Changes.Take("shape") {
		lines = append(lines, "shape "+url.QueryEscape(c.curve.Name())+" "+
			strconv.FormatFloat(c.frequency, 'f', 1, 64)+" "+
			strconv.FormatFloat(c.volume, 'f', 2, 64))
	}
	if c.Changes.Take("presets") {
		line := "presets"
		for _, name := range c.presetList {
			line += " " + url.QueryEscape(name)
		}
		lines = append(lines, line)
	}
	if c.Changes.Take("midi") {
		line := "midi"
		for _, m := range c.midi.Mappings() {
			line += " " + strconv.Itoa(int(m.CC)) + ":" + m.Param.String()
		}
		if i, ok := c.midi.Learning(); ok {
			line += " learning:" + strconv.Itoa(i)
		}
		lines = append(lines, line)
	}
	return lines
}
