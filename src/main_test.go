package main

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/jinjor/desktop-oscilloscope/src/audio"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func TestParseCommand(t *testing.T) {
	command, err := parseCommand("preset save my+preset%21")
	expectNoError(t, err)
	expectEqual(t, strings.Join(command, "|"), "preset|save|my preset!")

	command, err = parseCommand("  set   frequency 100 \r")
	expectNoError(t, err)
	expectEqual(t, strings.Join(command, "|"), "set|frequency|100")

	command, err = parseCommand("")
	expectNoError(t, err)
	expectEqual(t, command == nil, true)

	_, err = parseCommand("shape %zz")
	if err == nil {
		t.Error("expected an error for a broken escape")
	}
}

func TestXYReport(t *testing.T) {
	expectEqual(t, xyReport(nil), "xy")
	expectEqual(t, xyReport([]audio.Point{{X: 0.5, Y: -0.25}, {X: 1, Y: 0}}), "xy 0.5000 -0.2500 1.0000 0.0000")
}

func TestValidateConfig(t *testing.T) {
	cfg := newZeroConfig()
	expectNoError(t, cfg.validate())

	for _, broken := range []func(*config){
		func(c *config) { c.sampleRate = 100 },
		func(c *config) { c.frequency = 500 },
		func(c *config) { c.volume = 2 },
		func(c *config) { c.capacity = 0 },
		func(c *config) { c.decimation = 0 },
		func(c *config) { c.socket = "" },
	} {
		cfg := newZeroConfig()
		broken(&cfg)
		if cfg.validate() == nil {
			t.Errorf("expected %+v to be invalid", cfg)
		}
	}

	cfg.socket = ""
	cfg.headless = true
	expectNoError(t, cfg.validate())
}

func TestReceiveCommands(t *testing.T) {
	client, server := net.Pipe()
	commandCh := make(chan []string, 10)
	done := make(chan error, 1)
	go func() {
		done <- receiveCommands(context.Background(), server, commandCh)
	}()
	_, err := client.Write([]byte("start\n\nshape star 5\nbad %zz\nstop\n"))
	expectNoError(t, err)
	expectNoError(t, client.Close())
	expectNoError(t, <-done)

	close(commandCh)
	var got []string
	for command := range commandCh {
		got = append(got, strings.Join(command, " "))
	}
	expectEqual(t, strings.Join(got, ","), "start,shape star 5,stop")
}
