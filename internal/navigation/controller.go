// Package navigation implements the per-tab browsing state machine:
// history, request lifecycle and cancellation of stale fetches.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gopherview/internal/address"
	"gopherview/internal/content"
	"gopherview/internal/domain"
	"gopherview/internal/eventbus"
	"gopherview/internal/history"
)

var (
	// ErrInvalidAddress wraps address validation failures
	ErrInvalidAddress = errors.New("invalid address")
	// ErrEmptyQuery is returned by Search for blank text
	ErrEmptyQuery = errors.New("empty search query")
)

// Phase is the coarse controller state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
)

// String returns a human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Stats describes the last successful load
type Stats struct {
	Size    int
	Elapsed time.Duration
}

// State is the externally observable snapshot of a controller
type State struct {
	Current    domain.Address
	HasCurrent bool
	AddressBar string // may diverge from Current while the user types
	Payload    []byte
	Status     string
	Err        string // last transport failure, verbatim
	Scroll     int
	Token      uint64 // generation of the current request
	Phase      Phase
	Stopped    bool // the last request was stopped by the user
	Loaded     Stats
}

// Option configures a Controller
type Option func(*Controller)

// WithBus publishes navigation events to bus
func WithBus(bus eventbus.EventBus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithSearchEndpoint sets the server used for free-text searches
func WithSearchEndpoint(addr domain.Address) Option {
	return func(c *Controller) { c.search = addr }
}

// WithMaxHistory caps the history stack
func WithMaxHistory(n int) Option {
	return func(c *Controller) { c.history = history.New(n) }
}

// WithContext sets the parent of every request context
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.parent = ctx }
}

// WithTabID names the controller in events and logs
func WithTabID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// DefaultSearchEndpoint is the Veronica-2 search server on Floodgap
func DefaultSearchEndpoint() domain.Address {
	a := domain.NewAddress("gopher.floodgap.com", "/v2/vs")
	a.Type = domain.TypeSearch
	return a
}

// Controller owns one tab's history and request lifecycle. It is driven
// from a single goroutine; fetch results are handed back via Complete.
type Controller struct {
	id      string
	state   State
	history *history.Stack
	search  domain.Address
	parent  context.Context
	cancel  context.CancelFunc
	bus     eventbus.EventBus
}

// New creates an idle controller with empty history
func New(opts ...Option) *Controller {
	c := &Controller{
		id:      uuid.NewString()[:8],
		history: history.New(0),
		search:  DefaultSearchEndpoint(),
		parent:  context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the tab identifier
func (c *Controller) ID() string {
	return c.id
}

// State returns a snapshot of the observable state
func (c *Controller) State() State {
	return c.state
}

// History returns a copy of the history frames, oldest first
func (c *Controller) History() []history.Frame {
	return c.history.Frames()
}

// HistoryCursor returns the index of the active frame
func (c *Controller) HistoryCursor() int {
	return c.history.Cursor()
}

// CanGoBack reports whether Back would issue a fetch
func (c *Controller) CanGoBack() bool {
	return c.history.CanGoBack()
}

// CanGoForward reports whether Forward would issue a fetch
func (c *Controller) CanGoForward() bool {
	return c.history.CanGoForward()
}

// Navigate commits addr to history and issues its fetch
func (c *Controller) Navigate(addr domain.Address) (Request, error) {
	if err := addr.Validate(); err != nil {
		c.reject(addr.String(), err)
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	c.history.Push(addr, c.state.Scroll)
	c.state.Scroll = 0
	c.state.AddressBar = addr.String()
	return c.load(addr), nil
}

// Search submits text to the configured search server. Results are
// rendered as a menu.
func (c *Controller) Search(text string) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, ErrEmptyQuery
	}
	return c.Navigate(c.search.WithQuery(text))
}

// Submit handles address-bar submission: addresses navigate, anything
// that does not parse is searched, bad schemes and ports are rejected
// without touching state.
func (c *Controller) Submit(raw string) (Request, error) {
	in, err := address.Classify(raw)
	if err != nil {
		c.reject(raw, err)
		return Request{}, err
	}
	if in.IsSearch {
		return c.Search(in.Query)
	}
	return c.Navigate(in.Address)
}

// Back steps to the previous frame. ok is false at the boundary, in
// which case nothing changes and no fetch is needed.
func (c *Controller) Back() (req Request, ok bool) {
	c.history.UpdateScroll(c.state.Scroll)
	frame, ok := c.history.Back()
	if !ok {
		return Request{}, false
	}
	return c.restore(frame), true
}

// Forward steps to the next frame. ok is false at the boundary.
func (c *Controller) Forward() (req Request, ok bool) {
	c.history.UpdateScroll(c.state.Scroll)
	frame, ok := c.history.Forward()
	if !ok {
		return Request{}, false
	}
	return c.restore(frame), true
}

// Reload refetches the current address without touching history
func (c *Controller) Reload() (Request, bool) {
	if !c.state.HasCurrent {
		return Request{}, false
	}
	c.state.AddressBar = c.state.Current.String()
	return c.load(c.state.Current), true
}

// Stop abandons the in-flight request. It reports false, changing
// nothing, when no request is in flight.
func (c *Controller) Stop() bool {
	if c.state.Phase != PhaseLoading {
		return false
	}
	c.cancelInFlight()
	c.state.Token++
	c.state.Phase = PhaseIdle
	c.state.Status = ""
	c.state.Stopped = true
	c.publish(domain.NavigationStoppedEvent{Tab: c.id, Token: c.state.Token})
	return true
}

// UpdateScroll records the scroll offset of the active page
func (c *Controller) UpdateScroll(position int) {
	if position < 0 {
		position = 0
	}
	c.state.Scroll = position
	c.history.UpdateScroll(position)
}

// EditAddressBar records what the user is typing
func (c *Controller) EditAddressBar(text string) {
	c.state.AddressBar = text
}

// Complete applies a fetch result. Results from superseded or stopped
// requests are discarded and false is returned.
func (c *Controller) Complete(res Completion) bool {
	if res.Token != c.state.Token || c.state.Phase != PhaseLoading {
		c.publish(domain.FetchDiscardedEvent{Tab: c.id, Token: res.Token, CurrentToken: c.state.Token})
		return false
	}
	c.cancelInFlight()
	c.state.Status = ""

	if res.Err != nil {
		c.state.Phase = PhaseError
		c.state.Err = res.Err.Error()
		c.state.Payload = nil
		c.publish(domain.FetchFailedEvent{Tab: c.id, Token: res.Token, Address: c.state.Current, Message: c.state.Err})
		return true
	}

	c.state.Phase = PhaseIdle
	c.state.Payload = res.Payload
	c.state.Loaded = Stats{Size: len(res.Payload), Elapsed: res.Elapsed}
	c.publish(domain.FetchCompletedEvent{
		Tab:     c.id,
		Token:   res.Token,
		Address: c.state.Current,
		Size:    len(res.Payload),
		Elapsed: res.Elapsed,
	})
	return true
}

// Content interprets the current payload. It returns nil while loading,
// after a transport failure, after a stop, and before the first load.
func (c *Controller) Content() (content.Content, error) {
	s := c.state
	if !s.HasCurrent || s.Phase != PhaseIdle {
		return nil, nil
	}
	if s.Stopped && len(s.Payload) == 0 {
		return nil, nil
	}
	return content.Interpret(s.Current, s.Payload)
}

func (c *Controller) restore(frame history.Frame) Request {
	c.state.Scroll = frame.ScrollPosition
	c.state.AddressBar = frame.Address.String()
	return c.load(frame.Address)
}

// load moves to Loading for addr, superseding any in-flight request
func (c *Controller) load(addr domain.Address) Request {
	c.cancelInFlight()
	c.state.Token++

	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel

	c.state.Current = addr
	c.state.HasCurrent = true
	c.state.Payload = nil
	c.state.Err = ""
	c.state.Stopped = false
	c.state.Status = fmt.Sprintf("Waiting for %s...", addr.Hostname)
	c.state.Phase = PhaseLoading

	req := Request{
		Token:   c.state.Token,
		Kind:    KindFor(addr),
		Address: addr,
		Query:   addr.Query,
		Ctx:     ctx,
	}
	c.publish(domain.NavigationStartedEvent{Tab: c.id, Token: req.Token, Address: addr})
	return req
}

func (c *Controller) cancelInFlight() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) reject(input string, err error) {
	c.publish(domain.NavigationRejectedEvent{Tab: c.id, Input: input, Reason: err.Error()})
}

func (c *Controller) publish(e domain.DomainEvent) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
