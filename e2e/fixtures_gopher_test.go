//go:build e2e && unix

package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// gopherServer is a tiny gopher server for the browser to talk to
type gopherServer struct {
	ln   net.Listener
	host string
	port int
}

func startGopherServer(t *testing.T) *gopherServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	s := &gopherServer{ln: ln, host: "127.0.0.1", port: addr.Port}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s
}

// Address returns host:port for the root menu
func (s *gopherServer) Address() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

func (s *gopherServer) line(typ byte, name, selector string) string {
	return fmt.Sprintf("%c%s\t%s\t%s\t%d\r\n", typ, name, selector, s.host, s.port)
}

func (s *gopherServer) serve(conn net.Conn) {
	defer conn.Close()

	request, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	selector, query, _ := strings.Cut(strings.TrimRight(request, "\r\n"), "\t")

	var b strings.Builder
	switch selector {
	case "", "/":
		b.WriteString("iWelcome to the e2e hole\t\terror.host\t1\r\n")
		b.WriteString(s.line('0', "About this server", "/about.txt"))
		b.WriteString(s.line('1', "Nested directory", "/nested"))
		b.WriteString(s.line('7', "Search the hole", "/search"))
		b.WriteString(s.line('1', "Slow directory", "/slow"))
		b.WriteString(".\r\n")
	case "/about.txt":
		b.WriteString("Hello from the e2e server\r\n..dot stuffed line\r\n.\r\n")
	case "/nested":
		b.WriteString("iYou found the nested page\t\terror.host\t1\r\n.\r\n")
	case "/search":
		b.WriteString(fmt.Sprintf("iResults for %s\t\terror.host\t1\r\n.\r\n", query))
	case "/slow":
		// Hold the connection until the client gives up
		_, _ = bufio.NewReader(conn).ReadByte()
		return
	default:
		b.WriteString("3Not found\t\terror.host\t1\r\n.\r\n")
	}
	_, _ = conn.Write([]byte(b.String()))
}

// writeConfig points home and search at the server and returns the path
func writeConfig(t *testing.T, dir string, s *gopherServer) string {
	t.Helper()
	cfg := fmt.Sprintf(`home = %q

[transport]
timeout_seconds = 5

[search]
host = %q
port = %d
selector = "/search"

[ui]
download_dir = %q
`, s.Address(), s.host, s.port, filepath.Join(dir, "downloads"))

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
