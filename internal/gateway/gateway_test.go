package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherview/internal/domain"
)

type call struct {
	kind  string
	addr  domain.Address
	query string
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (f *fakeFetcher) add(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeFetcher) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeFetcher) FetchMenu(_ context.Context, addr domain.Address) ([]byte, error) {
	f.add(call{kind: "menu", addr: addr})
	return []byte(`{"items":[]}`), f.err
}

func (f *fakeFetcher) FetchItem(_ context.Context, addr domain.Address) ([]byte, error) {
	f.add(call{kind: "item", addr: addr})
	return []byte("item bytes"), f.err
}

func (f *fakeFetcher) FetchSearch(_ context.Context, addr domain.Address, query string) ([]byte, error) {
	f.add(call{kind: "search", addr: addr, query: query})
	return []byte(`{"items":[{"type":"i","name":"hit"}]}`), f.err
}

func newTestServer(t *testing.T, f *fakeFetcher) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(Config{}, f).Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestDownloadMenu(t *testing.T) {
	f := &fakeFetcher{}
	ts := newTestServer(t, f)

	resp, body := post(t, ts.URL+PathMenu, `{"hostname":"gopher.floodgap.com","port":"70","selector":"/"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"items":[]}`, body)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(ElapsedHeader))

	got := f.last()
	assert.Equal(t, "menu", got.kind)
	assert.Equal(t, "gopher.floodgap.com", got.addr.Hostname)
	assert.Equal(t, 70, got.addr.Port)
	assert.Equal(t, domain.TypeMenu, got.addr.Type)
}

func TestDownloadItemDefaultsPort(t *testing.T) {
	f := &fakeFetcher{}
	ts := newTestServer(t, f)

	resp, body := post(t, ts.URL+PathItem, `{"hostname":"example.org","selector":"/a.txt","type":"0"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "item bytes", body)

	got := f.last()
	assert.Equal(t, domain.DefaultPort, got.addr.Port)
	assert.Equal(t, domain.TypeText, got.addr.Type)
}

func TestMissingHostname(t *testing.T) {
	ts := newTestServer(t, &fakeFetcher{})
	resp, body := post(t, ts.URL+PathMenu, `{"port":70}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing hostname", strings.TrimSpace(body))
}

func TestTransportErrorIs500(t *testing.T) {
	ts := newTestServer(t, &fakeFetcher{err: errors.New("failed to connect to x:70: refused")})
	resp, body := post(t, ts.URL+PathMenu, `{"hostname":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "refused")
}

func TestUnknownAPIMethod(t *testing.T) {
	ts := newTestServer(t, &fakeFetcher{})
	resp, body := post(t, ts.URL+"/api/v1/nope", `{"hostname":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unrecognised method", strings.TrimSpace(body))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeFetcher{})
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &fakeFetcher{})
	req, err := http.NewRequest(http.MethodOptions, ts.URL+PathMenu, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestClientRoundTrip(t *testing.T) {
	f := &fakeFetcher{}
	ts := newTestServer(t, f)
	c := NewClient(ts.URL+"/", 5*time.Second)
	ctx := context.Background()

	addr := domain.NewAddress("example.org", "/docs")
	addr.Port = 7070
	addr.Scheme = domain.SchemeSecure

	data, err := c.FetchMenu(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(data))
	got := f.last()
	assert.Equal(t, 7070, got.addr.Port)
	assert.Equal(t, "/docs", got.addr.Path)
	assert.Equal(t, domain.SchemeSecure, got.addr.Scheme)

	data, err = c.FetchSearch(ctx, addr.WithQuery("cats"), "cats")
	require.NoError(t, err)
	assert.Contains(t, string(data), "hit")
	assert.Equal(t, "cats", f.last().query)

	item := domain.NewAddress("example.org", "/f.bin")
	item.Type = domain.TypeBinary
	data, err = c.FetchItem(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "item bytes", string(data))
	assert.Equal(t, domain.TypeBinary, f.last().addr.Type)
}

func TestClientSurfacesServerError(t *testing.T) {
	ts := newTestServer(t, &fakeFetcher{err: errors.New("boom")})
	c := NewClient(ts.URL, 5*time.Second)

	_, err := c.FetchMenu(context.Background(), domain.NewAddress("example.org", "/"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}
