// Package suggest builds the address-bar autocomplete list.
package suggest

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"gopherview/internal/address"
	"gopherview/internal/domain"
	"gopherview/internal/history"
)

// Kind tags a suggestion so the presentation layer can style it
type Kind int

const (
	KindInteractive Kind = iota // echo of an address being typed
	KindHistory                 // a previously visited address
	KindSearch                  // echo of free text that will be searched
)

// Suggestion is one autocomplete candidate
type Suggestion struct {
	Kind    Kind
	Text    string
	Address domain.Address // set for KindHistory
}

// String renders the candidate as shown in the dropdown
func (s Suggestion) String() string {
	if s.Kind == KindHistory {
		return s.Address.HostPort() + s.Address.Path
	}
	return s.Text
}

// DefaultMaxResults bounds the history part of the list
const DefaultMaxResults = 8

// Engine produces suggestions from the current input and history
type Engine struct {
	MaxResults int
	Fuzzy      bool // rank history by fuzzy score instead of recency
}

// NewEngine creates an engine with the default limits
func NewEngine() *Engine {
	return &Engine{MaxResults: DefaultMaxResults}
}

// Suggest returns the echo of input followed by matching history frames
func (e *Engine) Suggest(input string, frames []history.Frame) []Suggestion {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	echo := Suggestion{Kind: KindSearch, Text: input}
	if address.IsAddress(input) {
		echo.Kind = KindInteractive
	}
	out := []Suggestion{echo}

	candidates := uniqueNewestFirst(frames)
	var matches []domain.Address
	if e.Fuzzy {
		matches = fuzzyMatches(input, candidates)
	} else {
		matches = substringMatches(input, candidates)
	}

	limit := e.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	for _, addr := range matches {
		if len(out)-1 >= limit {
			break
		}
		s := Suggestion{Kind: KindHistory, Address: addr}
		if strings.EqualFold(s.String(), input) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// uniqueNewestFirst walks frames from the tip down, keeping the first
// occurrence of each destination
func uniqueNewestFirst(frames []history.Frame) []domain.Address {
	var out []domain.Address
	for i := len(frames) - 1; i >= 0; i-- {
		addr := frames[i].Address
		seen := false
		for _, prev := range out {
			if prev.SameDestination(addr) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, addr)
		}
	}
	return out
}

func substringMatches(input string, candidates []domain.Address) []domain.Address {
	needle := strings.ToLower(input)
	var out []domain.Address
	for _, addr := range candidates {
		if strings.Contains(strings.ToLower(addr.HostPort()+addr.Path), needle) {
			out = append(out, addr)
		}
	}
	return out
}

func fuzzyMatches(input string, candidates []domain.Address) []domain.Address {
	targets := make([]string, len(candidates))
	for i, addr := range candidates {
		targets[i] = addr.HostPort() + addr.Path
	}
	// fuzzy.Find returns matches sorted by score
	ranks := fuzzy.Find(input, targets)
	out := make([]domain.Address, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, candidates[r.Index])
	}
	return out
}
