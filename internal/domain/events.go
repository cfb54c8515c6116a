package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventNavigationStarted  EventType = "NavigationStarted"
	EventFetchCompleted     EventType = "FetchCompleted"
	EventFetchFailed        EventType = "FetchFailed"
	EventFetchDiscarded     EventType = "FetchDiscarded"
	EventNavigationStopped  EventType = "NavigationStopped"
	EventNavigationRejected EventType = "NavigationRejected"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// NavigationStartedEvent is emitted when a controller issues a new request
type NavigationStartedEvent struct {
	Tab     string
	Token   uint64
	Address Address
}

func (e NavigationStartedEvent) Type() EventType { return EventNavigationStarted }

// FetchCompletedEvent is emitted when the current request delivers a payload
type FetchCompletedEvent struct {
	Tab     string
	Token   uint64
	Address Address
	Size    int
	Elapsed time.Duration
}

func (e FetchCompletedEvent) Type() EventType { return EventFetchCompleted }

// FetchFailedEvent is emitted when the current request fails in transport
type FetchFailedEvent struct {
	Tab     string
	Token   uint64
	Address Address
	Message string
}

func (e FetchFailedEvent) Type() EventType { return EventFetchFailed }

// FetchDiscardedEvent is emitted when a stale completion is dropped
type FetchDiscardedEvent struct {
	Tab          string
	Token        uint64
	CurrentToken uint64
}

func (e FetchDiscardedEvent) Type() EventType { return EventFetchDiscarded }

// NavigationStoppedEvent is emitted when the user stops an in-flight request
type NavigationStoppedEvent struct {
	Tab   string
	Token uint64
}

func (e NavigationStoppedEvent) Type() EventType { return EventNavigationStopped }

// NavigationRejectedEvent is emitted when an intent is refused before any
// state change, e.g. an unsupported scheme
type NavigationRejectedEvent struct {
	Tab    string
	Input  string
	Reason string
}

func (e NavigationRejectedEvent) Type() EventType { return EventNavigationRejected }
