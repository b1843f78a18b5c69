package main

import (
	"bufio"
	"context"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jinjor/desktop-oscilloscope/src/audio"
	"github.com/jinjor/desktop-oscilloscope/src/device"
	"github.com/jinjor/desktop-oscilloscope/src/scope"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// maxReportPoints limits the points of one xy report.
const maxReportPoints = 1024

func main() {
	log.SetFlags(log.Lshortfile)

	cfg := newZeroConfig()
	if doFlags(&cfg) {
		return
	}
	chk(cfg.validate(), "invalid config")

	if cfg.scope && !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Println("WARN: stdout is not a terminal, scope disabled")
		cfg.scope = false
	}
	if cfg.scope {
		logFile, err := os.Create(filepath.Join(os.TempDir(), AppName+".log"))
		chk(err, "failed to create log file")
		defer logFile.Close()
		log.SetOutput(logFile)
	}
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	chk(run(&cfg), "failed to run")
	log.Println("main() ended.")
}

func run(cfg *config) error {
	device.PreferredSampleRate = cfg.sampleRate
	backend, err := device.Lookup(cfg.backend)
	if err != nil {
		return err
	}
	buffer := audio.NewSampleBuffer(cfg.capacity)
	engine := audio.NewEngine(backend,
		audio.WithDevice(cfg.device),
		audio.WithBuffer(buffer),
		audio.WithDecimation(cfg.decimation),
	)
	defer engine.Close()

	controller, err := audio.NewController(engine, audio.ControllerConfig{
		Frequency: cfg.frequency,
		Volume:    cfg.volume,
		PresetDir: cfg.presets,
	})
	if err != nil {
		return err
	}
	if err := controller.LoadSession(); err != nil {
		log.Printf("WARN: %v\n", err)
	}
	defer func() {
		if err := controller.SaveSession(); err != nil {
			log.Printf("WARN: %v\n", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)
	go func() {
		select {
		case sig := <-signalCh:
			log.Printf("Caught signal %s: shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	var midiIn <-chan []byte
	if cfg.midi != "-" {
		midiIn = audio.ListenToMidiIn(ctx, cfg.midi)
	}
	g.Go(func() error {
		return controller.Run(ctx, midiIn)
	})

	if cfg.scope {
		g.Go(func() error {
			defer cancel()
			return scope.New(scope.Config{
				Buffer:   buffer,
				Settings: controller.Display,
				Status:   engine.Status,
				Commands: controller.CommandCh,
			}).Run(ctx)
		})
	}

	if cfg.headless {
		controller.CommandCh <- []string{"start"}
		if !cfg.scope {
			g.Go(func() error {
				return logReports(ctx, controller)
			})
		}
	} else {
		g.Go(func() error {
			defer cancel()
			return withIPCConnection(ctx, cfg.socket, func(conn net.Conn) error {
				ctx, done := context.WithCancel(ctx)
				defer done()
				g, ctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					defer done()
					return receiveCommands(ctx, conn, controller.CommandCh)
				})
				g.Go(func() error {
					return sendReports(ctx, conn, controller, buffer)
				})
				return g.Wait()
			})
		})
	}
	return g.Wait()
}

func withIPCConnection(ctx context.Context, sockFileName string, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	stopListening := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	defer stopListening()
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil && ctx.Err() == nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	log.Printf("start listening on %s...\n", sockFileName)
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	stopConn := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stopConn()
	defer func() {
		err := conn.Close()
		if err != nil && ctx.Err() == nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Connection interrupted")
				break loop
			}
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		line = []byte{}
		if err != nil {
			log.Printf("invalid command: %v\n", err)
			continue
		}
		if command == nil {
			continue
		}
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		case commandCh <- command:
		}
		log.Printf("received: %v\n", command)
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	lineStr := strings.Fields(line)
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

// xyReport formats points as "xy x0 y0 x1 y1 ...".
func xyReport(points []audio.Point) string {
	var b strings.Builder
	b.WriteString("xy")
	for _, p := range points {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.X, 'f', 4, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', 4, 64))
	}
	return b.String()
}

func sendReports(ctx context.Context, conn net.Conn, controller *audio.Controller, buffer *audio.SampleBuffer) error {
	t := time.NewTicker(time.Second / audio.TickRate)
	defer t.Stop()
	written := buffer.Written()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			var lines []string
			if w := buffer.Written(); w != written {
				n := int(min(w-written, maxReportPoints))
				written = w
				lines = append(lines, xyReport(buffer.RecentSamples(n)))
			}
			lines = append(lines, controller.Reports()...)
			if len(lines) == 0 {
				continue
			}
			if _, err := conn.Write([]byte(strings.Join(lines, "\n") + "\n")); err != nil {
				if ctx.Err() != nil {
					break loop
				}
				return err
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}

// logReports writes the reports to the log when nobody is connected.
func logReports(ctx context.Context, controller *audio.Controller) error {
	t := time.NewTicker(time.Second / audio.TickRate)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			for _, line := range controller.Reports() {
				log.Println(line)
			}
		}
	}
}
