package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/apiq/router"
	"github.com/kbukum/apiq/transport"
)

type todo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/todos/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/todos/")
		w.Header().Set("Content-Type", "application/json")
		if id == "404" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
			return
		}
		json.NewEncoder(w).Encode(todo{ID: 1, Title: "write tests", Completed: false})
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"query": r.URL.Query().Get("q"),
			"auth":  r.Header.Get("Authorization"),
			"agent": r.Header.Get("User-Agent"),
		})
	})
	mux.HandleFunc("/todos", func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]string{"ct": r.Header.Get("Content-Type")})
		if r.Method == http.MethodPost {
			var in todo
			json.NewDecoder(r.Body).Decode(&in)
			in.ID = 42
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(in)
			return
		}
		w.Write(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := router.Get[todo](c.Router(), "/todos/{id}"); err != nil {
		t.Fatalf("declare route: %v", err)
	}
	if err := router.Post[todo](c.Router(), "/todos"); err != nil {
		t.Fatalf("declare route: %v", err)
	}
	if err := router.Get[map[string]any](c.Router(), "/echo"); err != nil {
		t.Fatalf("declare route: %v", err)
	}
	return c
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "not a url"}); err == nil {
		t.Fatal("expected validation error for invalid base URL")
	}
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected validation error for missing base URL")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("APIQ_BASE_URL", "https://api.example.com")

	c, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if c.config.BaseURL != "https://api.example.com" {
		t.Fatalf("base URL = %q", c.config.BaseURL)
	}
	if c.config.Timeout != defaultTimeout {
		t.Fatalf("timeout default not applied: %v", c.config.Timeout)
	}
}

func TestClient_RequestWithoutScope(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")

	_, err := c.Get("/todos/1")
	if !IsScope(err) {
		t.Fatalf("expected ScopeError, got %v", err)
	}
}

func TestClient_SecondScopeRejected(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	if _, err := c.EnterBlocking(); !IsScope(err) {
		t.Fatalf("expected ScopeError for nested blocking scope, got %v", err)
	}
	if _, err := c.EnterNonblocking(); !IsScope(err) {
		t.Fatalf("expected ScopeError for nested nonblocking scope, got %v", err)
	}

	if err := scope.Exit(); err != nil {
		t.Fatalf("Exit: %v", err)
	}

	// A fresh scope is fine once the previous one exited.
	scope2, err := c.EnterNonblocking()
	if err != nil {
		t.Fatalf("EnterNonblocking after exit: %v", err)
	}
	scope2.Exit()
}

func TestScope_ExitIdempotent(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := scope.Exit(); err != nil {
			t.Fatalf("Exit #%d: %v", i+1, err)
		}
	}
	if scope.Active() {
		t.Fatal("scope still active after Exit")
	}
}

func TestClient_UndeclaredRoute(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	_, err = c.Get("/users/1")
	if !router.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	// The failed resolution must not poison the scope.
	if !scope.Active() {
		t.Fatal("scope deactivated by resolution failure")
	}
}

func TestRequest_PathParamErrors(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	if _, err := c.Get("/todos/{id}"); err == nil {
		t.Fatal("expected error for missing path parameter value")
	}
	if _, err := c.Get("/todos/{id}", WithPathParam("id", "1"), WithPathParam("extra", "x")); err == nil {
		t.Fatal("expected error for unknown path parameter")
	}
}

func TestClient_BlockingGet(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	req, err := c.Get("/todos/{id}", WithPathParam("id", "1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	if !resp.IsSuccess() {
		t.Fatalf("status = %d, want 2xx", resp.StatusCode())
	}

	got, err := As[todo](resp)
	if err != nil {
		t.Fatalf("As: %v", err)
	}
	if got.ID != 1 || got.Title != "write tests" {
		t.Fatalf("decoded %+v", got)
	}
}

func TestClient_ErrorStatusYieldsResponse(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	req, err := c.Get("/todos/{id}", WithPathParam("id", "404"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("an HTTP error status must not be a transport error, got %v", err)
	}
	if !resp.IsError() || resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode())
	}
	if len(resp.Bytes()) == 0 {
		t.Fatal("error body discarded")
	}
}

func TestClient_QueryHeadersAndAuth(t *testing.T) {
	srv := newTestServer(t)
	c, err := New(Config{
		BaseURL: srv.URL,
		Auth:    BearerAuth("sekrit"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := router.Get[map[string]any](c.Router(), "/echo"); err != nil {
		t.Fatalf("declare route: %v", err)
	}

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	req, err := c.Get("/echo", WithQuery("q", "hello world"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	echo, err := As[map[string]any](resp)
	if err != nil {
		t.Fatalf("As: %v", err)
	}
	if echo["query"] != "hello world" {
		t.Fatalf("query = %v", echo["query"])
	}
	if echo["auth"] != "Bearer sekrit" {
		t.Fatalf("auth = %v", echo["auth"])
	}
	agent, _ := echo["agent"].(string)
	if !strings.HasPrefix(agent, "apiq/") {
		t.Fatalf("user agent = %q", agent)
	}
}

func TestClient_PostWithBody(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	req, err := c.Post("/todos", WithBody(todo{Title: "new"}))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode())
	}
	created, err := As[todo](resp)
	if err != nil {
		t.Fatalf("As: %v", err)
	}
	if created.ID != 42 || created.Title != "new" {
		t.Fatalf("created %+v", created)
	}
}

func TestRequest_ResponseRepeatable(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	req, err := c.Get("/todos/{id}", WithPathParam("id", "1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	first, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("Response: %v", err)
	}
	second, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("Response (repeat): %v", err)
	}
	if first != second {
		t.Fatal("repeated Response calls returned different values")
	}
}

var countedDecodes int32

type countedTodo struct {
	ID int `json:"id"`
}

func (c *countedTodo) UnmarshalBody(data []byte) error {
	atomic.AddInt32(&countedDecodes, 1)
	type plain countedTodo
	return json.Unmarshal(data, (*plain)(c))
}

func TestResponse_DecodesExactlyOnce(t *testing.T) {
	srv := newTestServer(t)
	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := router.Get[countedTodo](c.Router(), "/todos/{id}"); err != nil {
		t.Fatalf("declare route: %v", err)
	}

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	req, err := c.Get("/todos/{id}", WithPathParam("id", "1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp, err := req.Response(context.Background())
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	atomic.StoreInt32(&countedDecodes, 0)
	for i := 0; i < 5; i++ {
		if _, err := resp.Object(); err != nil {
			t.Fatalf("Object #%d: %v", i+1, err)
		}
	}
	if _, err := As[countedTodo](resp); err != nil {
		t.Fatalf("As: %v", err)
	}
	if n := atomic.LoadInt32(&countedDecodes); n != 1 {
		t.Fatalf("decoded %d times, want exactly 1", n)
	}
}

func TestRequest_PerCallTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	c, err := New(Config{BaseURL: slow.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := router.Get[todo](c.Router(), "/todos/{id}"); err != nil {
		t.Fatalf("declare route: %v", err)
	}

	scope, err := c.EnterBlocking()
	if err != nil {
		t.Fatalf("EnterBlocking: %v", err)
	}
	defer scope.Exit()

	req, err := c.Get("/todos/{id}", WithPathParam("id", "1"), WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	_, err = req.Response(context.Background())
	if !transport.IsTimeout(err) {
		t.Fatalf("expected timeout transport error, got %v", err)
	}
}
