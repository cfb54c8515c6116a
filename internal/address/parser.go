// Package address classifies raw address-bar text as either a gopher
// address or a free-text search query.
package address

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopherview/internal/domain"
)

var (
	// ErrNotAddress means the text does not match the address grammar.
	// Callers treat it as a search query, never as a user-facing error.
	ErrNotAddress = errors.New("not an address")
	// ErrUnsupportedScheme means a scheme other than gopher/gophers was given
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	// ErrInvalidPort means the port is outside 1-65535
	ErrInvalidPort = errors.New("invalid port")
)

// addressPattern is the single grammar for typed addresses:
//
//	[scheme "://"] host ["." host]* [":" port] [path]
var addressPattern = regexp.MustCompile(
	`^(?:([A-Za-z][A-Za-z0-9+.\-]*)://)?` + // scheme
		`([A-Za-z0-9_\-]+(?:\.[A-Za-z0-9_\-]+)*)` + // host labels
		`(?::(\d+))?` + // port
		`([/A-Za-z0-9_\-!&?=.#]*)$`, // path
)

// Parse turns raw text into an address. The type tag always defaults to
// a menu; the path is kept verbatim except that a lone "/" becomes empty.
func Parse(raw string) (domain.Address, error) {
	raw = strings.TrimSpace(raw)
	m := addressPattern.FindStringSubmatch(raw)
	if m == nil {
		return domain.Address{}, ErrNotAddress
	}

	path := m[4]
	if path == "/" {
		// a lone slash is the root menu
		path = ""
	}
	addr := domain.NewAddress(m[2], path)

	switch strings.ToLower(m[1]) {
	case "", domain.PrimarySchemeName:
		addr.Scheme = domain.SchemePrimary
	case domain.SecureSchemeName:
		addr.Scheme = domain.SchemeSecure
	default:
		return domain.Address{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, m[1])
	}

	if m[3] != "" {
		port, err := strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return domain.Address{}, fmt.Errorf("%w: %s", ErrInvalidPort, m[3])
		}
		addr.Port = port
	}

	return addr, nil
}

// IsAddress reports whether raw parses as an address
func IsAddress(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Input is the classification of address-bar text: exactly one of
// Address or Query is meaningful, selected by IsSearch.
type Input struct {
	Address  domain.Address
	Query    string
	IsSearch bool
}

// Classify decides between navigation and search. Grammar mismatches fall
// through to a search for the raw text; scheme and port problems are
// returned so the caller can reject the navigation.
func Classify(raw string) (Input, error) {
	addr, err := Parse(raw)
	switch {
	case err == nil:
		return Input{Address: addr}, nil
	case errors.Is(err, ErrNotAddress):
		return Input{Query: strings.TrimSpace(raw), IsSearch: true}, nil
	default:
		return Input{}, err
	}
}
