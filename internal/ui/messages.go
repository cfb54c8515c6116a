package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"gopherview/internal/navigation"
)

// fetchDoneMsg carries a finished fetch back to the update loop
type fetchDoneMsg struct {
	res navigation.Completion
}

// savedMsg contains the result of a save command
type savedMsg struct {
	path string
	size int
	err  error
}

// fetchCmd performs req off the update loop
func fetchCmd(req navigation.Request, f navigation.Fetcher) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{res: navigation.Execute(req, f)}
	}
}

// saveCmd writes data into dir without overwriting existing files
func saveCmd(dir, name string, data []byte) tea.Cmd {
	return func() tea.Msg {
		path, err := writeUnique(dir, name, data)
		return savedMsg{path: path, size: len(data), err: err}
	}
}

func writeUnique(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	path := filepath.Join(dir, name)
	for i := 1; ; i++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if os.IsExist(err) {
			path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		return path, f.Close()
	}
}
