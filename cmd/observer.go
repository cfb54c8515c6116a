package cmd

import (
	"log"

	"gopherview/internal/domain"
	"gopherview/internal/eventbus"
)

// observe logs every navigation event. The returned func unsubscribes.
func observe(bus eventbus.EventBus) func() {
	types := []eventbus.EventType{
		eventbus.EventNavigationStarted,
		eventbus.EventFetchCompleted,
		eventbus.EventFetchFailed,
		eventbus.EventFetchDiscarded,
		eventbus.EventNavigationStopped,
		eventbus.EventNavigationRejected,
	}

	var unsubs []func()
	for _, t := range types {
		unsubs = append(unsubs, bus.Subscribe(t, logEvent))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func logEvent(e eventbus.DomainEvent) {
	switch ev := e.(type) {
	case domain.NavigationStartedEvent:
		log.Printf("[%s] #%d loading %s", ev.Tab, ev.Token, ev.Address)
	case domain.FetchCompletedEvent:
		log.Printf("[%s] #%d loaded %s (%d bytes in %s)", ev.Tab, ev.Token, ev.Address, ev.Size, ev.Elapsed)
	case domain.FetchFailedEvent:
		log.Printf("[%s] #%d failed %s: %s", ev.Tab, ev.Token, ev.Address, ev.Message)
	case domain.FetchDiscardedEvent:
		log.Printf("[%s] discarded stale response #%d (current #%d)", ev.Tab, ev.Token, ev.CurrentToken)
	case domain.NavigationStoppedEvent:
		log.Printf("[%s] #%d stopped", ev.Tab, ev.Token)
	case domain.NavigationRejectedEvent:
		log.Printf("[%s] rejected %q: %s", ev.Tab, ev.Input, ev.Reason)
	default:
		log.Printf("event %s", e.Type())
	}
}
