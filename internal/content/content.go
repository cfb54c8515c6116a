// Package content interprets fetched payloads according to the type tag
// of the address they were fetched from.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"gopherview/internal/domain"
)

// ErrEmptyPayload means a non-menu resource came back with no bytes
var ErrEmptyPayload = errors.New("empty payload")

// Content is the closed set of interpretations handed to the renderer.
// The unexported method keeps the set closed to this package.
type Content interface {
	content()
}

// Menu is a decoded gopher directory
type Menu struct {
	Entries []MenuEntry
}

// Text is a text document. Markup asks the renderer for structured
// markdown rendering instead of verbatim preformatted text.
type Text struct {
	Body   string
	Markup bool
}

// Image is a bitmap payload
type Image struct {
	Data []byte
	MIME string
}

// Download is a binary payload to be saved rather than shown
type Download struct {
	Data     []byte
	Filename string
}

// Unsupported is shown as an explicit notice for unknown tags and
// payloads that could not be decoded
type Unsupported struct {
	Type   domain.ItemType
	Reason string
}

func (Menu) content()        {}
func (Text) content()        {}
func (Image) content()       {}
func (Download) content()    {}
func (Unsupported) content() {}

// EntryKind says how a menu entry behaves when activated
type EntryKind int

const (
	EntryLink     EntryKind = iota // navigates to Address
	EntryInfo                      // not navigable
	EntrySearch                    // prompts for a query, then searches Address
	EntryExternal                  // opaque URL outside gopher
)

// MenuEntry is one line of a menu
type MenuEntry struct {
	Kind    EntryKind
	Type    domain.ItemType
	Name    string
	Address domain.Address
	URL     string // EntryExternal only
}

// Navigable reports whether activating the entry issues a navigation
func (e MenuEntry) Navigable() bool {
	return e.Kind == EntryLink || e.Kind == EntrySearch
}

// wireItem is the JSON menu payload format produced by the transport
type wireItem struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	Port     int    `json:"port"`
	Selector string `json:"selector"`
}

type wireMenu struct {
	Items []wireItem `json:"items"`
}

// markupSuffixes selects structured rendering for text documents
var markupSuffixes = []string{".md", ".markdown"}

// Interpret maps (address, payload) to content. Only an empty non-menu
// payload is an error; undecodable payloads degrade to Unsupported.
func Interpret(addr domain.Address, payload []byte) (Content, error) {
	if addr.Type == domain.TypeMenu {
		return interpretMenu(addr, payload), nil
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrEmptyPayload, addr.String())
	}

	switch {
	case addr.Type == domain.TypeText:
		return Text{Body: string(payload), Markup: hasMarkupSuffix(addr.Path)}, nil
	case addr.Type.IsImage():
		return Image{Data: payload, MIME: http.DetectContentType(payload)}, nil
	case addr.Type == domain.TypeBinary:
		return Download{Data: payload, Filename: SuggestedFilename(addr)}, nil
	default:
		return Unsupported{Type: addr.Type, Reason: "unhandled item type"}, nil
	}
}

func interpretMenu(addr domain.Address, payload []byte) Content {
	if len(strings.TrimSpace(string(payload))) == 0 {
		// payload is cleared while a fresh load is pending
		return Menu{}
	}

	var wm wireMenu
	if err := json.Unmarshal(payload, &wm); err != nil {
		return Unsupported{Type: addr.Type, Reason: fmt.Sprintf("malformed menu: %v", err)}
	}

	entries := make([]MenuEntry, 0, len(wm.Items))
	for _, item := range wm.Items {
		entries = append(entries, newEntry(addr, item))
	}
	return Menu{Entries: entries}
}

func newEntry(parent domain.Address, item wireItem) MenuEntry {
	var t domain.ItemType
	if item.Type != "" {
		t = domain.ItemType(item.Type[0])
	}

	port := item.Port
	if port == 0 {
		port = domain.DefaultPort
	}
	target := domain.Address{
		Scheme:      domain.SchemePrimary,
		Hostname:    item.Hostname,
		Port:        port,
		Type:        t,
		Path:        item.Selector,
		DisplayName: item.Name,
	}
	if parent.Scheme == domain.SchemeSecure && target.Hostname == parent.Hostname && target.Port == parent.Port {
		target.Scheme = domain.SchemeSecure
	}

	entry := MenuEntry{Type: t, Name: item.Name, Address: target}
	switch t {
	case domain.TypeHTML:
		entry.Kind = EntryExternal
		entry.URL = strings.TrimPrefix(item.Selector, "URL:")
	case domain.TypeInfo:
		entry.Kind = EntryInfo
	case domain.TypeSearch:
		entry.Kind = EntrySearch
	default:
		entry.Kind = EntryLink
	}
	return entry
}

func hasMarkupSuffix(p string) bool {
	lower := strings.ToLower(p)
	for _, suffix := range markupSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// SuggestedFilename derives a download name from the last path segment
func SuggestedFilename(addr domain.Address) string {
	name := path.Base(strings.TrimRight(addr.Path, "/"))
	if name == "." || name == "/" || name == "" {
		return "download.bin"
	}
	return name
}
