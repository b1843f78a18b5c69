package audio

import (
	"strings"
	"testing"

	"github.com/jinjor/desktop-oscilloscope/src/device"
	"github.com/jinjor/desktop-oscilloscope/src/effect"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	e := NewEngine(testBackend{device.NewNull("test", device.DefaultConfig)})
	c, err := NewController(e, ControllerConfig{PresetDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		expectNoError(t, e.Close())
	})
	return c
}

func expectError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Error("expected an error, but got nil")
	}
}

func TestControllerPublishesOnTick(t *testing.T) {
	c := newTestController(t)
	expectEqual(t, c.engine.Shape() == nil, true)
	c.Tick()
	s := c.engine.Shape()
	expectEqual(t, s.Name, "Circle")
	expectEqual(t, len(s.Points), 600)
	expectEqual(t, s.Volume, DefaultVolume)

	expectNoError(t, c.update([]string{"shape", "star", "6"}))
	expectNoError(t, c.update([]string{"set", "frequency", "100"}))
	expectEqual(t, c.engine.ShapeName(), "Circle")
	c.Tick()
	expectEqual(t, c.engine.ShapeName(), "Star")
	expectEqual(t, len(c.engine.Shape().Points), 480)

	expectNoError(t, c.update([]string{"set", "frequency", "1000"}))
	c.Tick()
	expectEqual(t, len(c.engine.Shape().Points), 240)
}

func TestControllerRejectsBadCommands(t *testing.T) {
	c := newTestController(t)
	expectError(t, c.update(nil))
	expectError(t, c.update([]string{"unknown"}))
	expectError(t, c.update([]string{"shape"}))
	expectError(t, c.update([]string{"shape", "hexagon"}))
	expectError(t, c.update([]string{"shape", "circle", "x"}))
	expectError(t, c.update([]string{"shape", "circle", "1", "2"}))
	expectError(t, c.update([]string{"set", "frequency"}))
	expectError(t, c.update([]string{"set", "volume", "loud"}))
	expectError(t, c.update([]string{"set", "rotation", "spin", "1"}))
	expectError(t, c.update([]string{"set", "lfo", "freq", "fast"}))
	expectError(t, c.update([]string{"set", "unknown", "a", "b"}))
	expectError(t, c.update([]string{"scene", "remove", "0"}))
	expectError(t, c.update([]string{"midi", "map", "200", "volume"}))
	expectError(t, c.update([]string{"midi", "map", "7", "pitch"}))
	expectError(t, c.update([]string{"midi", "learn", "0"}))
	expectError(t, c.update([]string{"shape", "polygon", "1e18"}))
	expectError(t, c.update([]string{"shape", "polygon", "2.5"}))
	expectError(t, c.update([]string{"shape", "star", "1e18"}))
	expectError(t, c.update([]string{"shape", "star", "2"}))
	expectError(t, c.update([]string{"shape", "circle", "NaN"}))
	expectError(t, c.update([]string{"shape", "line", "0", "Inf"}))
	expectError(t, c.update([]string{"scene", "add", "polygon", "1e18"}))
	expectEqual(t, c.shape.Kind, "circle")

	expectNoError(t, c.update([]string{"shape", "polygon", "1024"}))
	expectEqual(t, c.shape.Kind, "polygon")
}

func TestControllerEffects(t *testing.T) {
	c := newTestController(t)
	expectNoError(t, c.update([]string{"set", "rotation", "enabled", "true"}))
	expectNoError(t, c.update([]string{"set", "rotation", "speed", "9"}))
	expectNoError(t, c.update([]string{"set", "lfo", "enabled", "true"}))
	expectNoError(t, c.update([]string{"set", "lfo", "destination", "rotate"}))
	expectNoError(t, c.update([]string{"set", "lfo", "wave", "square"}))
	expectNoError(t, c.update([]string{"set", "mirror", "both"}))
	expectNoError(t, c.update([]string{"set", "offset", "x", "0.25"}))
	c.Tick()

	p := c.engine.Effects()
	expectEqual(t, p.RotationEnabled, true)
	expectEqual(t, p.RotationSpeed, 5.0)
	expectEqual(t, p.Lfo.Enabled, true)
	expectEqual(t, p.Lfo.Destination, DestRotate)
	expectEqual(t, p.Lfo.Wave, effect.WaveSquare)
	expectEqual(t, p.Mirror, effect.AxisBoth)
	expectEqual(t, p.OffsetX, 0.25)

	var b chainBuilder
	expectEqual(t, b.build(&p).Len(), 4)
}

func TestControllerScene(t *testing.T) {
	c := newTestController(t)
	expectNoError(t, c.update([]string{"scene", "add", "circle", "0.5"}))
	expectNoError(t, c.update([]string{"scene", "add", "line"}))
	expectNoError(t, c.update([]string{"scene", "add", "heart"}))
	expectError(t, c.update([]string{"scene", "add", "blob"}))
	expectEqual(t, len(c.scene), 3)

	expectNoError(t, c.update([]string{"shape", "scene"}))
	c.Tick()
	expectEqual(t, c.engine.ShapeName(), "Scene")

	expectNoError(t, c.update([]string{"scene", "weight", "0", "2"}))
	expectNoError(t, c.update([]string{"scene", "enable", "2", "false"}))
	expectNoError(t, c.update([]string{"scene", "down", "0"}))
	expectEqual(t, c.scene[1].Shape.Kind, "circle")
	expectEqual(t, c.scene[1].Weight, 2.0)
	expectNoError(t, c.update([]string{"scene", "up", "1"}))
	expectEqual(t, c.scene[0].Shape.Kind, "circle")
	expectNoError(t, c.update([]string{"scene", "remove", "2"}))
	expectEqual(t, len(c.scene), 2)
	expectError(t, c.update([]string{"scene", "weight", "5", "1"}))

	expectNoError(t, c.update([]string{"scene", "clear"}))
	c.Tick()
	expectEqual(t, len(c.scene), 0)
	x, y := c.curve.Sample(0.3)
	expectEqual(t, x, 0.0)
	expectEqual(t, y, 0.0)
}

func TestControllerStartStop(t *testing.T) {
	c := newTestController(t)
	expectNoError(t, c.update([]string{"start"}))
	expectEqual(t, c.engine.Playing(), true)
	expectEqual(t, c.engine.ShapeName(), "Circle")
	expectNoError(t, c.update([]string{"toggle"}))
	expectEqual(t, c.engine.Playing(), false)
	expectNoError(t, c.update([]string{"toggle"}))
	expectEqual(t, c.engine.Playing(), true)
	expectNoError(t, c.update([]string{"stop"}))
	expectEqual(t, c.engine.Playing(), false)
	expectEqual(t, c.engine.Status(), "Stopped")
}

func TestControllerMidi(t *testing.T) {
	c := newTestController(t)
	expectNoError(t, c.update([]string{"midi", "map", "7", "volume"}))
	expectNoError(t, c.update([]string{"midi", "map", "1", "zoom"}))
	c.midi.HandleMessage([]byte{0xB0, 7, 127})
	c.Tick()
	expectEqual(t, c.engine.Shape().Volume, 1.0)

	expectNoError(t, c.update([]string{"midi", "learn", "1"}))
	c.midi.HandleMessage([]byte{0xB3, 20, 0})
	c.Tick()
	expectEqual(t, c.midi.Mappings()[1].CC, uint8(20))
	c.midi.HandleMessage([]byte{0xB3, 20, 127})
	c.Tick()
	expectNearlyEqual(t, c.Display().Zoom, 2.0)

	expectNoError(t, c.update([]string{"midi", "unmap", "0"}))
	expectEqual(t, len(c.midi.Mappings()), 1)
}

func TestControllerPresets(t *testing.T) {
	c := newTestController(t)
	expectNoError(t, c.update([]string{"shape", "lissajous", "5", "4"}))
	expectNoError(t, c.update([]string{"set", "frequency", "120"}))
	expectNoError(t, c.update([]string{"set", "lfo", "enabled", "true"}))
	expectNoError(t, c.update([]string{"set", "display", "zoom", "1.5"}))
	expectNoError(t, c.update([]string{"midi", "map", "10", "frequency"}))
	expectNoError(t, c.update([]string{"preset", "save", "wide one"}))
	saved := string(c.ToJSON())

	expectNoError(t, c.update([]string{"shape", "circle"}))
	expectNoError(t, c.update([]string{"set", "frequency", "60"}))
	expectNoError(t, c.update([]string{"set", "lfo", "enabled", "false"}))
	expectNoError(t, c.update([]string{"midi", "unmap", "0"}))
	expectNoError(t, c.update([]string{"preset", "save", "plain"}))

	expectNoError(t, c.update([]string{"preset", "load", "wide one"}))
	expectEqual(t, string(c.ToJSON()), saved)
	c.Tick()
	expectEqual(t, c.engine.ShapeName(), "Lissajous")
	expectEqual(t, len(c.engine.Shape().Points), 400)
	expectEqual(t, c.engine.Effects().Lfo.Enabled, true)

	expectNoError(t, c.update([]string{"preset", "list"}))
	expectEqual(t, strings.Join(c.presetList, ","), "wide one,plain")

	expectError(t, c.update([]string{"preset", "save", "_list"}))
	expectError(t, c.update([]string{"preset", "save", "../escape"}))
	expectError(t, c.update([]string{"preset", "load", "missing"}))
}

func TestControllerPartialSettingsKeepDefaults(t *testing.T) {
	c := newTestController(t)
	expectNoError(t, c.update([]string{"set", "volume", "0.5"}))
	expectNoError(t, c.update([]string{"midi", "map", "10", "zoom"}))
	expectNoError(t, c.ApplyJSON([]byte(`{"frequency":100}`)))
	expectEqual(t, c.frequency, 100.0)
	expectEqual(t, c.volume, 0.5)
	expectEqual(t, c.shape.Kind, "circle")
	expectEqual(t, c.Display(), NewDisplaySettings())
	expectEqual(t, len(c.midi.Mappings()), 1)

	expectNoError(t, c.ApplyJSON([]byte(`{"shape":{"kind":"star"},"display":{"zoom":2}}`)))
	expectEqual(t, c.shape.Kind, "star")
	expectEqual(t, len(c.shape.Args), 0)
	expectEqual(t, c.Display().Zoom, 2.0)
	expectEqual(t, c.Display().Persistence, 0.85)
	expectEqual(t, c.volume, 0.5)

	expectNoError(t, c.ApplyJSON([]byte(`{"display":{"zoom":0,"intensity":-3}}`)))
	expectEqual(t, c.Display().Zoom, midiParamRanges[ParamZoom].min)
	expectEqual(t, c.Display().Intensity, midiParamRanges[ParamIntensity].min)

	expectError(t, c.ApplyJSON([]byte(`{"shape":{"kind":"blob"}}`)))
	expectEqual(t, c.shape.Kind, "star")
}

func TestControllerSession(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine(testBackend{device.NewNull("test", device.DefaultConfig)})
	defer e.Close()

	c, err := NewController(e, ControllerConfig{PresetDir: dir})
	expectNoError(t, err)
	expectNoError(t, c.LoadSession())
	expectEqual(t, c.shape.Kind, "circle")
	expectNoError(t, c.update([]string{"shape", "heart", "0.6"}))
	expectNoError(t, c.update([]string{"set", "frequency", "75"}))
	expectNoError(t, c.SaveSession())

	restored, err := NewController(e, ControllerConfig{PresetDir: dir})
	expectNoError(t, err)
	expectNoError(t, restored.LoadSession())
	expectEqual(t, string(restored.ToJSON()), string(c.ToJSON()))

	list, err := restored.presets.getList()
	expectNoError(t, err)
	expectEqual(t, len(list), 0)
	expectError(t, c.update([]string{"preset", "load", "_last"}))
}

func TestControllerReports(t *testing.T) {
	c := newTestController(t)
	c.Tick()
	lines := c.Reports()
	expectEqual(t, len(lines), 3)
	expectEqual(t, lines[0], "status Stopped")
	expectEqual(t, strings.HasPrefix(lines[1], "effects "), true)
	expectEqual(t, lines[2], "shape Circle 80.0 0.80")
	expectEqual(t, len(c.Reports()), 0)

	expectNoError(t, c.update([]string{"midi", "map", "7", "volume"}))
	expectEqual(t, c.Reports()[0], "midi 7:volume")

	c.Changes.Add("status")
	c.Changes.Add("error")
	lines = c.Reports()
	expectEqual(t, len(lines), 1)
	expectEqual(t, lines[0], "status Stopped")
	expectEqual(t, len(c.Reports()), 0)
}

func TestChanges(t *testing.T) {
	c := NewChanges()
	c.Add("a")
	expectEqual(t, c.Has("a"), true)
	expectEqual(t, c.Has("b"), false)
	c.Delete("a")
	expectEqual(t, c.Has("a"), false)
	c.Add("b")
	expectEqual(t, c.Take("b"), true)
	expectEqual(t, c.Take("b"), false)
}
