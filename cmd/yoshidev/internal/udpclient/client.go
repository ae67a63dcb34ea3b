// Package udpclient is an interactive client for poking a running synth
// over UDP: each input line is sent as one datagram and the reply is printed.
package udpclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yoshimi/yoshidev/internal/log"
)

// DefaultBufferSize is the largest reply accepted by default.
const DefaultBufferSize = 512

const (
	portPrompt    = "Port to connect (decimal) ?"
	commandPrompt = " Command (RET to exit) ?"
)

// ErrNoPort is returned when no port is configured and none was entered.
var ErrNoPort = errors.New("no port given")

// Config configures a Session.
type Config struct {
	// Host is the target host; empty targets the local machine.
	Host string

	// Port is the target port; 0 prompts for it on the input.
	Port int

	// Local is the local bind address; empty binds an ephemeral port.
	Local string

	// BufferSize caps the reply size. Defaults to DefaultBufferSize.
	BufferSize int

	// Timeout bounds the wait for each reply; 0 waits forever.
	Timeout time.Duration

	// Prompt prints the interactive prompts.
	Prompt bool
}

// Session is one interactive exchange over a single UDP socket.
type Session struct {
	cfg Config
	in  *bufio.Reader
	out io.Writer
}

// NewSession creates a session reading commands from in and writing replies
// to out.
func NewSession(cfg Config, in io.Reader, out io.Writer) *Session {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &Session{cfg: cfg, in: bufio.NewReader(in), out: out}
}

// Run resolves the target, then sends commands until an empty line, end of
// input or cancellation of ctx.
func (s *Session) Run(ctx context.Context) error {
	logger := log.Component("udp")

	port := s.cfg.Port
	if port == 0 {
		var err error
		if port, err = s.askPort(); err != nil {
			return err
		}
	}

	target, err := resolveTarget(s.cfg.Host, port)
	if err != nil {
		return err
	}

	var laddr *net.UDPAddr
	if s.cfg.Local != "" {
		if laddr, err = net.ResolveUDPAddr("udp", s.cfg.Local); err != nil {
			return fmt.Errorf("invalid local address %q: %w", s.cfg.Local, err)
		}
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("failed to bind UDP socket: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock a pending read when the context ends.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	logger.Info("session started", "local", conn.LocalAddr().String(), "target", target.String())

	buf := make([]byte, s.cfg.BufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := s.readLine(commandPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line == "" {
			return nil
		}

		if _, err := conn.WriteToUDP([]byte(line), target); err != nil {
			return fmt.Errorf("failed to send command: %w", err)
		}
		logger.Debug("sent", "bytes", len(line))

		reply, from, err := s.receive(ctx, conn, buf)
		if err != nil {
			return err
		}
		if reply == nil {
			if ctx.Err() != nil {
				return nil
			}
			s.printf("(no reply within %s)\n", s.cfg.Timeout)
			continue
		}
		logger.Debug("received", "bytes", len(reply), "from", from.String())
		s.printf("%s\n", strings.TrimSpace(string(reply)))
	}
}

// receive waits for one datagram. A nil reply with nil error means the wait
// timed out or ctx was cancelled.
func (s *Session) receive(ctx context.Context, conn *net.UDPConn, buf []byte) ([]byte, *net.UDPAddr, error) {
	var deadline time.Time
	if s.cfg.Timeout > 0 {
		deadline = time.Now().Add(s.cfg.Timeout)
	}
	if ctx.Err() != nil {
		return nil, nil, nil
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, nil, fmt.Errorf("failed to set read deadline: %w", err)
	}
	// Cancellation may have raced with the deadline reset above.
	if ctx.Err() != nil {
		return nil, nil, nil
	}

	n, from, err := conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to receive reply: %w", err)
	}
	return buf[:n], from, nil
}

func (s *Session) askPort() (int, error) {
	line, err := s.readLine(portPrompt)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if line == "" {
		return 0, ErrNoPort
	}
	return parsePort(line)
}

// readLine prompts and returns the next input line without its line ending.
func (s *Session) readLine(prompt string) (string, error) {
	if s.cfg.Prompt {
		s.printf("%s", prompt)
	}
	line, err := s.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line != "" && errors.Is(err, io.EOF) {
		return line, nil
	}
	return line, err
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}

func resolveTarget(host string, port int) (*net.UDPAddr, error) {
	if host == "" {
		host = "127.0.0.1"
	}
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s:%d: %w", host, port, err)
	}
	return addr, nil
}
