//go:build !headless

package device

import (
	"github.com/lawl/pulseaudio"
	"github.com/pkg/errors"
)

// pulseSinks returns the names of the PulseAudio sinks.
func pulseSinks() ([]string, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to PulseAudio")
	}
	defer c.Close()

	sinks, err := c.Sinks()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sinks")
	}
	names := make([]string, len(sinks))
	for i, sink := range sinks {
		names[i] = sink.Name
	}
	return names, nil
}
