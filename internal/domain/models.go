package domain

import (
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultPort is the well-known gopher port
const DefaultPort = 70

// Scheme selects the transport variant for an address
type Scheme int

const (
	SchemePrimary Scheme = iota // plain TCP
	SchemeSecure                // TLS
)

// Scheme tokens as typed in the address bar
const (
	PrimarySchemeName = "gopher"
	SecureSchemeName  = "gophers"
)

// String returns the scheme token
func (s Scheme) String() string {
	if s == SchemeSecure {
		return SecureSchemeName
	}
	return PrimarySchemeName
}

// ItemType is the one-character type tag carried by every gopher resource
type ItemType byte

// Item types from RFC 1436 plus the common extensions
const (
	TypeText      ItemType = '0'
	TypeMenu      ItemType = '1'
	TypeCSO       ItemType = '2'
	TypeError     ItemType = '3'
	TypeBinHex    ItemType = '4'
	TypeDOS       ItemType = '5'
	TypeUUEncoded ItemType = '6'
	TypeSearch    ItemType = '7'
	TypeTelnet    ItemType = '8'
	TypeBinary    ItemType = '9'
	TypeMirror    ItemType = '+'
	TypeGIF       ItemType = 'g'
	TypeImage     ItemType = 'I'
	TypeTN3270    ItemType = 'T'
	TypeHTML      ItemType = 'h'
	TypeInfo      ItemType = 'i'
	TypeSound     ItemType = 's'
	TypePNG       ItemType = 'p'
	TypeDocument  ItemType = 'd'
)

// String returns the tag as a one-character string
func (t ItemType) String() string {
	return string(rune(t))
}

// IsImage reports whether the tag denotes a bitmap image
func (t ItemType) IsImage() bool {
	return t == TypeGIF || t == TypeImage || t == TypePNG
}

// Address identifies a remote gopher resource. Treat it as a value: copy,
// don't mutate shared instances.
type Address struct {
	Scheme      Scheme
	Hostname    string
	Port        int
	Type        ItemType
	Path        string // the gopher selector
	Query       string
	HasQuery    bool   // set only for search submissions
	DisplayName string // user-facing label, not sent on the wire
}

// NewAddress creates a menu address with the default port
func NewAddress(hostname, path string) Address {
	return Address{
		Scheme:   SchemePrimary,
		Hostname: hostname,
		Port:     DefaultPort,
		Type:     TypeMenu,
		Path:     path,
	}
}

// Validate checks the address invariants
func (a Address) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Hostname, validation.Required),
		validation.Field(&a.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&a.Scheme, validation.In(SchemePrimary, SchemeSecure)),
		validation.Field(&a.Type, validation.Required),
	)
}

// WithQuery returns a search submission for this address. Results are
// menus, so the type is forced to '1'.
func (a Address) WithQuery(query string) Address {
	a.Type = TypeMenu
	a.Query = query
	a.HasQuery = true
	return a
}

// SameDestination reports whether both addresses point at the same
// resource. The query is ignored so repeated searches compare equal.
func (a Address) SameDestination(b Address) bool {
	return a.Hostname == b.Hostname &&
		a.Port == b.Port &&
		a.Type == b.Type &&
		a.Path == b.Path
}

// HostPort returns "hostname:port"
func (a Address) HostPort() string {
	return a.Hostname + ":" + strconv.Itoa(a.Port)
}

// String renders the address the way the address bar shows it
func (a Address) String() string {
	s := a.HostPort() + a.Path
	if a.Scheme == SchemeSecure {
		return SecureSchemeName + "://" + s
	}
	return s
}

// Label returns the display name, falling back to the address itself
func (a Address) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.HasQuery {
		return fmt.Sprintf("%s ?%s", a.String(), a.Query)
	}
	return a.String()
}
