package hl7v2

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// MLLP envelope bytes: <VT> payload <FS><CR>.
const (
	StartBlock byte = 0x0b
	EndBlock   byte = 0x1c
	FrameEnd   byte = 0x0d
)

const (
	maxFrameSize = 1 << 20
	frameTimeout = 30 * time.Second
	writeTimeout = 10 * time.Second
	sinkTimeout  = 10 * time.Second
)

var frameTrailer = []byte{EndBlock, FrameEnd}

// Frame wraps payload in an MLLP envelope.
func Frame(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+3)
	out = append(out, StartBlock)
	out = append(out, payload...)
	return append(out, frameTrailer...)
}

// scanFrames is a bufio.SplitFunc yielding MLLP payloads. Bytes outside an
// envelope are skipped and a frame cut off by EOF is dropped.
func scanFrames(data []byte, atEOF bool) (int, []byte, error) {
	start := bytes.IndexByte(data, StartBlock)
	if start < 0 {
		return len(data), nil, nil
	}
	end := bytes.Index(data[start+1:], frameTrailer)
	if end < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		return start, nil, nil
	}
	end += start + 1
	return end + len(frameTrailer), data[start+1 : end], nil
}

// Inbound is one message received over MLLP together with its sheets.
type Inbound struct {
	Message *Message
	// Raw is the message's own segments joined by CR, without batch
	// wrappers or sibling messages.
	Raw    []byte
	Sheets []sheet.Sheet
	Remote string
}

// Sink takes the conversion of one inbound message. An error is reported to
// the sender as AE with the error text in MSA-3.
type Sink func(ctx context.Context, in Inbound) error

// Listener accepts HL7v2 over MLLP. A frame may hold one message or an
// FHS/BHS batch; each message in it is converted, passed to the sink and
// acknowledged in order on the same connection.
type Listener struct {
	addr   string
	sink   Sink
	logger zerolog.Logger
	now    func() time.Time

	ln     net.Listener
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewListener creates a listener for addr that feeds sink.
func NewListener(addr string, sink Sink, logger zerolog.Logger) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		addr:   addr,
		sink:   sink,
		logger: logger.With().Str("component", "mllp").Logger(),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[net.Conn]struct{}),
	}
}

// Start binds the address and accepts connections in the background.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("mllp: listen on %s: %w", l.addr, err)
	}
	l.ln = ln

	l.wg.Add(1)
	go l.accept()
	return nil
}

// Addr is the bound address once started, which resolves port 0.
func (l *Listener) Addr() string {
	if l.ln == nil {
		return l.addr
	}
	return l.ln.Addr().String()
}

// Close stops accepting, drops open connections and waits for in-flight
// messages to finish.
func (l *Listener) Close() error {
	l.cancel()
	var err error
	if l.ln != nil {
		err = l.ln.Close()
	}
	l.mu.Lock()
	for c := range l.conns {
		c.Close()
	}
	l.mu.Unlock()
	l.wg.Wait()
	return err
}

func (l *Listener) accept() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if l.ctx.Err() == nil {
				l.logger.Error().Err(err).Msg("accept failed")
			}
			return
		}
		if !l.track(conn) {
			conn.Close()
			return
		}
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			defer l.untrack(conn)
			l.serve(conn)
		}()
	}
}

// track registers conn unless the listener is already closing.
func (l *Listener) track(conn net.Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx.Err() != nil {
		return false
	}
	l.conns[conn] = struct{}{}
	return true
}

func (l *Listener) untrack(conn net.Conn) {
	l.mu.Lock()
	delete(l.conns, conn)
	l.mu.Unlock()
	conn.Close()
}

// serve reads frames until the peer hangs up, a frame stalls past
// frameTimeout or a frame grows past maxFrameSize.
func (l *Listener) serve(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	log := l.logger.With().Str("remote", remote).Logger()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), maxFrameSize)
	sc.Split(scanFrames)

	for {
		conn.SetReadDeadline(time.Now().Add(frameTimeout))
		if !sc.Scan() {
			break
		}
		for _, ack := range l.receive(remote, sc.Bytes()) {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := conn.Write(Frame(ack)); err != nil {
				log.Error().Err(err).Msg("write ack failed")
				return
			}
		}
	}

	var netErr net.Error
	switch err := sc.Err(); {
	case err == nil, errors.Is(err, net.ErrClosed):
	case errors.Is(err, bufio.ErrTooLong):
		log.Warn().Int("limit", maxFrameSize).Msg("frame too large, closing connection")
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Debug().Msg("connection idle, closing")
	default:
		log.Warn().Err(err).Msg("read failed")
	}
}

// receive converts every message in one frame payload and returns their
// ACKs. A payload without an MSH segment has no control id to acknowledge
// and is dropped.
func (l *Listener) receive(remote string, payload []byte) [][]byte {
	batch := SplitMessages(string(payload))
	if len(batch) == 0 {
		l.logger.Warn().Str("remote", remote).Int("bytes", len(payload)).Msg("frame has no MSH segment, dropped")
		return nil
	}

	acks := make([][]byte, 0, len(batch))
	for _, lines := range batch {
		msg := parseLines(lines)
		in := Inbound{
			Message: msg,
			Raw:     []byte(strings.Join(lines, "\r")),
			Sheets:  Sheets([]Contents{Decode(msg)}),
			Remote:  remote,
		}

		code, text := AckAccept, ""
		ctx, cancel := context.WithTimeout(l.ctx, sinkTimeout)
		if err := l.sink(ctx, in); err != nil {
			code, text = AckError, err.Error()
		}
		cancel()

		l.logger.Debug().
			Str("remote", remote).
			Str("control_id", msg.ControlID).
			Str("ack", string(code)).
			Msg("message received")
		acks = append(acks, Acknowledge(msg, code, text, l.now()))
	}
	return acks
}
