package navigation

import (
	"context"
	"time"

	"gopherview/internal/domain"
)

// FetchKind selects the transport operation for a request
type FetchKind int

const (
	FetchMenu FetchKind = iota
	FetchItem
	FetchSearch
)

func (k FetchKind) String() string {
	switch k {
	case FetchMenu:
		return "menu"
	case FetchSearch:
		return "search"
	default:
		return "item"
	}
}

// KindFor picks the fetch operation for addr
func KindFor(addr domain.Address) FetchKind {
	switch {
	case addr.HasQuery:
		return FetchSearch
	case addr.Type == domain.TypeMenu:
		return FetchMenu
	default:
		return FetchItem
	}
}

// Fetcher is the transport boundary. Menu and search results come back as
// the JSON menu payload, items as raw bytes.
type Fetcher interface {
	FetchMenu(ctx context.Context, addr domain.Address) ([]byte, error)
	FetchItem(ctx context.Context, addr domain.Address) ([]byte, error)
	FetchSearch(ctx context.Context, addr domain.Address, query string) ([]byte, error)
}

// Request is a fetch issued by the controller. Ctx is cancelled when the
// request is superseded or stopped.
type Request struct {
	Token   uint64
	Kind    FetchKind
	Address domain.Address
	Query   string
	Ctx     context.Context
}

// Valid reports whether the request was actually issued
func (r Request) Valid() bool {
	return r.Token != 0
}

// Completion is the outcome of a Request, fed back through Complete
type Completion struct {
	Token   uint64
	Payload []byte
	Err     error
	Elapsed time.Duration
}

// Execute runs req against f. It blocks and is meant to be called off the
// controller's goroutine.
func Execute(req Request, f Fetcher) Completion {
	ctx := req.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	var payload []byte
	var err error
	switch req.Kind {
	case FetchMenu:
		payload, err = f.FetchMenu(ctx, req.Address)
	case FetchSearch:
		payload, err = f.FetchSearch(ctx, req.Address, req.Query)
	default:
		payload, err = f.FetchItem(ctx, req.Address)
	}
	return Completion{
		Token:   req.Token,
		Payload: payload,
		Err:     err,
		Elapsed: time.Since(start),
	}
}
