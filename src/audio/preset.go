package audio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// DefaultPresetDir ...
const DefaultPresetDir = "~/.config/desktop-oscilloscope/presets"

var presetNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-. ]+$`)

type presetMetaJSON struct {
	Name string `json:"name"`
}
type presetMetaListJSON struct {
	Items []presetMetaJSON `json:"items"`
}

// lastSession is the file holding the settings of the previous run.
const lastSession = "_last.json"

// presetManager stores settings as dir/<name>.json and keeps dir/_list.json in sync.
type presetManager struct {
	dir string
}

func newPresetManager(dir string) (*presetManager, error) {
	if dir == "" {
		dir = DefaultPresetDir
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to expand preset directory")
	}
	return &presetManager{dir: expanded}, nil
}

func (pm *presetManager) path(name string) (string, error) {
	if !presetNamePattern.MatchString(name) || name == "_list" || name == "_last" {
		return "", errors.Errorf("invalid preset name %q", name)
	}
	return filepath.Join(pm.dir, name+".json"), nil
}

func (pm *presetManager) getList() ([]string, error) {
	bytes, err := os.ReadFile(filepath.Join(pm.dir, "_list.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list presetMetaListJSON
	if err := json.Unmarshal(bytes, &list); err != nil {
		return nil, errors.Wrap(err, "broken preset list")
	}
	names := make([]string, len(list.Items))
	for i, item := range list.Items {
		names[i] = item.Name
	}
	return names, nil
}

func (pm *presetManager) load(name string) ([]byte, error) {
	path, err := pm.path(name)
	if err != nil {
		return nil, err
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load preset %q", name)
	}
	return bytes, nil
}

func (pm *presetManager) save(name string, data []byte) error {
	path, err := pm.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(pm.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create preset directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to save preset %q", name)
	}
	names, err := pm.getList()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	list := presetMetaListJSON{Items: make([]presetMetaJSON, 0, len(names)+1)}
	for _, n := range append(names, name) {
		list.Items = append(list.Items, presetMetaJSON{Name: n})
	}
	return os.WriteFile(filepath.Join(pm.dir, "_list.json"), toRawMessage(&list), 0o644)
}

// loadLast returns nil without error when no session was saved yet.
func (pm *presetManager) loadLast() ([]byte, error) {
	bytes, err := os.ReadFile(filepath.Join(pm.dir, lastSession))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load last session")
	}
	return bytes, nil
}

func (pm *presetManager) saveLast(data []byte) error {
	if err := os.MkdirAll(pm.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create preset directory")
	}
	if err := os.WriteFile(filepath.Join(pm.dir, lastSession), data, 0o644); err != nil {
		return errors.Wrap(err, "failed to save last session")
	}
	return nil
}
