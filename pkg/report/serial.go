//go:build !tinygo

package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.bug.st/serial"

	"github.com/itohio/comfort/pkg/module"
)

const (
	// DefaultBaudRate is the controller's report baud rate.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

var (
	// ErrConnected is returned by Connect on a connected reader.
	ErrConnected = errors.New("already connected")
	// ErrClosed is returned by Connect after Close.
	ErrClosed = errors.New("reader closed")
)

// OpenSerial opens a serial port in 8N1 mode.
func OpenSerial(port string, baudRate int) (serial.Port, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	return p, nil
}

// Ports returns the names of available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithBufferSize sets the readings channel capacity.
func WithBufferSize(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.bufSize = n
		}
	}
}

// WithLogger sets the logger for dropped and malformed lines.
func WithLogger(l zerolog.Logger) ReaderOption {
	return func(r *Reader) {
		r.log = l
	}
}

// WithOpener replaces the serial port with any line source.
func WithOpener(open func() (io.ReadCloser, error)) ReaderOption {
	return func(r *Reader) {
		if open != nil {
			r.open = open
		}
	}
}

// Reader collects report lines from a controller.
type Reader struct {
	open    func() (io.ReadCloser, error)
	bufSize int
	log     zerolog.Logger

	mu        sync.RWMutex
	conn      io.ReadCloser
	readings  chan module.Reading
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	started   bool
	connected bool
	closed    bool

	lines     atomic.Uint64
	malformed atomic.Uint64
	dropped   atomic.Uint64
}

// NewReader creates a reader for the serial port at the given baud rate.
func NewReader(port string, baudRate int, opts ...ReaderOption) *Reader {
	r := &Reader{
		open: func() (io.ReadCloser, error) {
			return OpenSerial(port, baudRate)
		},
		bufSize: DefaultBufferSize,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.readings = make(chan module.Reading, r.bufSize)
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.done = make(chan struct{})
	return r
}

// Connect opens the source and starts reading lines.
func (r *Reader) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.started {
		return ErrConnected
	}

	conn, err := r.open()
	if err != nil {
		return err
	}

	r.conn = conn
	r.started = true
	r.connected = true

	go r.readLoop(conn)

	return nil
}

// Close stops reading and closes the source. The readings channel is closed once the
// read loop exits.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.cancel()

	var err error
	started := r.started
	if r.conn != nil {
		err = r.conn.Close()
		r.conn = nil
	}
	r.connected = false
	r.mu.Unlock()

	if started {
		<-r.done
	} else {
		close(r.readings)
	}
	return err
}

// Readings returns the channel of parsed readings.
func (r *Reader) Readings() <-chan module.Reading {
	return r.readings
}

// IsConnected returns whether the reader is currently connected.
func (r *Reader) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// Stats returns the number of received, malformed and dropped lines.
func (r *Reader) Stats() (lines, malformed, dropped uint64) {
	return r.lines.Load(), r.malformed.Load(), r.dropped.Load()
}

func (r *Reader) readLoop(conn io.Reader) {
	defer close(r.done)
	defer close(r.readings)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		line := scanner.Text()
		if len(line) == 0 || line == "\r" {
			continue
		}
		r.lines.Add(1)

		reading, err := ParseLine(line)
		if err != nil {
			r.malformed.Add(1)
			r.log.Warn().Err(err).Str("line", line).Msg("Failed to parse report line")
			continue
		}

		// Non-blocking send
		select {
		case r.readings <- reading:
		case <-r.ctx.Done():
			return
		default:
			r.dropped.Add(1)
			r.log.Warn().Msg("Readings channel full, dropping reading")
		}
	}

	if err := scanner.Err(); err != nil && r.ctx.Err() == nil {
		r.log.Error().Err(err).Msg("Error reading report lines")
	}

	r.mu.Lock()
	r.connected = false
	r.mu.Unlock()
}
