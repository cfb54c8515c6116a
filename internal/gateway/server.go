// Package gateway exposes the gopher client over HTTP and provides a
// matching HTTP client, so a browser front end or a remote TUI can fetch
// through one host.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"gopherview/internal/domain"
	"gopherview/internal/navigation"
)

// ElapsedHeader carries the upstream fetch time in milliseconds
const ElapsedHeader = "X-Gopher-Elapsed"

// API paths
const (
	PathMenu   = "/api/v1/downloadMenu"
	PathItem   = "/api/v1/downloadItem"
	PathSearch = "/api/v1/search"
)

// Config holds server configuration
type Config struct {
	Listen         string
	AllowedOrigins []string
}

// Server serves the gateway API
type Server struct {
	cfg        Config
	fetcher    navigation.Fetcher
	router     chi.Router
	httpServer *http.Server
}

// New creates a server fetching through f
func New(cfg Config, f navigation.Fetcher) *Server {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	s := &Server{cfg: cfg, fetcher: f}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Range"},
		ExposedHeaders: []string{ElapsedHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post(PathMenu, s.handle(navigation.FetchMenu))
	r.Post(PathItem, s.handle(navigation.FetchItem))
	r.Post(PathSearch, s.handle(navigation.FetchSearch))
	r.Post("/api/*", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unrecognised method", http.StatusBadRequest)
	})

	return r
}

// Start listens on the configured address. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	log.Printf("gateway listening on %s", s.cfg.Listen)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Port accepts both JSON numbers and numeric strings
type Port int

func (p *Port) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid port %s", raw)
	}
	*p = Port(n)
	return nil
}

// Request is the JSON body of every API call
type Request struct {
	Hostname string `json:"hostname"`
	Port     Port   `json:"port"`
	Selector string `json:"selector"`
	Type     string `json:"type,omitempty"`
	Query    string `json:"query,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
}

// Validate checks the request has somewhere to go
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Hostname, validation.Required.Error("missing hostname")),
	)
}

// Address converts the request to an address, defaulting the port and
// falling back to fallback for a missing type
func (r Request) Address(fallback domain.ItemType) domain.Address {
	addr := domain.NewAddress(r.Hostname, r.Selector)
	if r.Port > 0 {
		addr.Port = int(r.Port)
	}
	addr.Type = fallback
	if r.Type != "" {
		addr.Type = domain.ItemType(r.Type[0])
	}
	if r.Secure {
		addr.Scheme = domain.SchemeSecure
	}
	return addr
}

func (s *Server) handle(kind navigation.FetchKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := req.Validate(); err != nil {
			http.Error(w, "missing hostname", http.StatusBadRequest)
			return
		}

		fallback := domain.TypeBinary
		if kind != navigation.FetchItem {
			fallback = domain.TypeMenu
		}
		addr := req.Address(fallback)
		log.Printf("-> API Request - %s: %s (type: %s)", r.URL.Path, addr.String(), addr.Type)

		res := navigation.Execute(navigation.Request{
			Kind:    kind,
			Address: addr,
			Query:   req.Query,
			Ctx:     r.Context(),
		}, s.fetcher)
		if res.Err != nil {
			log.Printf("Error downloading from gopher - sending 500: %v", res.Err)
			http.Error(w, res.Err.Error(), http.StatusInternalServerError)
			return
		}

		contentType := "application/octet-stream"
		if kind != navigation.FetchItem {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set(ElapsedHeader, strconv.FormatInt(res.Elapsed.Milliseconds(), 10))
		w.WriteHeader(http.StatusOK)
		w.Write(res.Payload)
	}
}
