//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const ringSize = 1 << 20 // 1 MiB of scrollback
var binPath = "gopherview_e2e"

// Keys as the terminal sends them
const (
	KeyEnter  = "\r"
	KeyCtrlC  = "\x03"
	KeyEsc    = "\x1b"
	KeyDown   = "j"
	KeyBack   = "h"
	KeyGoTo   = "g"
	KeySearch = "/"
	KeyStop   = "x"
	KeyQuit   = "q"
)

// ANSI escape sequences stripped before matching plain text
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`,
)

// Session drives one gopherview process through a pty
type Session struct {
	t   *testing.T
	pty *os.File
	cmd *exec.Cmd
	dir string

	mu   sync.Mutex
	buf  []byte
	head int
	full bool
}

// NewSession creates a session whose $HOME and config live in a temp dir
func NewSession(t *testing.T) *Session {
	return &Session{
		t:   t,
		dir: t.TempDir(),
		buf: make([]byte, ringSize),
	}
}

// Start launches the binary with args in a 40x120 pty
func (s *Session) Start(args ...string) error {
	s.cmd = exec.Command(binPath, args...)
	s.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+s.dir,
		"XDG_CONFIG_HOME="+filepath.Join(s.dir, ".config"),
		"GOPHERVIEW_LOG_FILE="+filepath.Join(s.dir, "gopherview.log"),
	)

	f, err := pty.StartWithSize(s.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}
	s.pty = f

	go s.read()
	return nil
}

func (s *Session) read() {
	buf := make([]byte, 8192)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			s.mu.Lock()
			for i := 0; i < n; i++ {
				s.buf[s.head] = buf[i]
				s.head = (s.head + 1) % ringSize
				if s.head == 0 {
					s.full = true
				}
			}
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Send writes keystrokes to the application
func (s *Session) Send(keys string) {
	s.t.Helper()
	if _, err := s.pty.Write([]byte(keys)); err != nil {
		s.t.Fatalf("failed to send %q: %v", keys, err)
	}
}

// Type sends text followed by enter
func (s *Session) Type(text string) {
	s.t.Helper()
	s.Send(text)
	s.Send(KeyEnter)
}

// See waits for text to appear in the normalized output
func (s *Session) See(text string) bool {
	s.t.Helper()
	return s.WaitFor(func(out string) bool { return strings.Contains(out, text) }, 5*time.Second)
}

// Absent reports whether text stays out of the output for d
func (s *Session) Absent(text string, d time.Duration) bool {
	s.t.Helper()
	return !s.WaitFor(func(out string) bool { return strings.Contains(out, text) }, d)
}

// WaitFor polls the normalized output until pred holds or timeout passes
func (s *Session) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	s.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(s.Plain()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Reset forgets everything captured so far, so later waits only match
// fresh output
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head = 0
	s.full = false
}

// Plain returns the captured output with ANSI sequences removed
func (s *Session) Plain() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	if !s.full {
		raw = string(s.buf[:s.head])
	} else {
		out := make([]byte, ringSize)
		copy(out, s.buf[s.head:])
		copy(out[ringSize-s.head:], s.buf[:s.head])
		raw = string(out)
	}
	return ansiRe.ReplaceAllString(raw, "")
}

// Exited reports whether the process exits within timeout
func (s *Session) Exited(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		_ = s.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// DumpTail logs the last n bytes of output, for failures
func (s *Session) DumpTail(n int) {
	out := s.Plain()
	if len(out) > n {
		out = out[len(out)-n:]
	}
	s.t.Logf("--- tail ---\n%s", out)
}

// Close kills the process and releases the pty
func (s *Session) Close() {
	if s.pty != nil {
		_ = s.pty.Close()
		s.pty = nil
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_, _ = s.cmd.Process.Wait()
		s.cmd = nil
	}
}
