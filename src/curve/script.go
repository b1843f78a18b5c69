package curve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// Script evaluates a Lua curve and freezes it into a Path.
//
// The script must define a global function sample(t) returning x and y for t
// in [0, 1). Optional globals: name (string) and closed (boolean, default true).
//
//	name = "Rose"
//	function sample(t)
//	  local a = t * 2 * math.pi
//	  local r = math.cos(3 * a)
//	  return r * math.cos(a), r * math.sin(a)
//	end
func Script(name, src string, n int) (*Path, error) {
	n = pointCount(n)
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return nil, errors.Wrap(err, "failed to run curve script")
	}
	fn, ok := L.GetGlobal("sample").(*lua.LFunction)
	if !ok {
		return nil, errors.New("curve script does not define sample(t)")
	}
	if v, ok := L.GetGlobal("name").(lua.LString); ok && v != "" {
		name = string(v)
	}
	closed := true
	if v := L.GetGlobal("closed"); v != lua.LNil {
		closed = lua.LVAsBool(v)
	}

	points := make([]Point, n)
	for i := range points {
		t := float64(i) / float64(n)
		if !closed {
			t = float64(i) / float64(n-1)
		}
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true}, lua.LNumber(t)); err != nil {
			return nil, errors.Wrapf(err, "sample(%v) failed", t)
		}
		x, xok := L.Get(-2).(lua.LNumber)
		y, yok := L.Get(-1).(lua.LNumber)
		L.Pop(2)
		if !xok || !yok {
			return nil, errors.Errorf("sample(%v) must return two numbers", t)
		}
		points[i] = Point{clamp(float64(x)), clamp(float64(y))}
	}
	return NewPath(name, points, closed), nil
}

// LoadScript reads a Lua curve from a file. The file name is the default curve name.
func LoadScript(path string, n int) (*Path, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read curve script")
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Script(name, string(src), n)
}
