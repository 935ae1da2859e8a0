package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"
)

// replyPadding surrounds every JSON reply so clients must trim it
const replyPadding = "\n  "

// RecordedRequest is a request as the fake remote end received it
type RecordedRequest struct {
	Method        string
	Path          string
	Header        http.Header
	Body          []byte
	ContentLength int64
}

// FakeRemote is a minimal in-process WebDriver remote end. It implements session
// creation and deletion, the url commands, /status, and an echo endpoint for PUT.
type FakeRemote struct {
	Echo   *echo.Echo
	Server *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	sessions map[string]string
	nextID   int
}

// NewFakeRemote starts a fake remote end. Call Close when done.
func NewFakeRemote() *FakeRemote {
	f := &FakeRemote{sessions: make(map[string]string)}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(f.record)

	e.GET("/status", f.status)
	e.POST("/session", f.newSession)
	e.DELETE("/session/:id", f.deleteSession)
	e.GET("/session/:id/url", f.getURL)
	e.POST("/session/:id/url", f.navigate)
	e.PUT("/session/:id/echo", f.echoBody)

	f.Echo = e
	f.Server = httptest.NewServer(e)
	return f
}

// URL returns the base URL of the remote end
func (f *FakeRemote) URL() string {
	return f.Server.URL
}

// Close shuts the server down
func (f *FakeRemote) Close() {
	f.Server.Close()
}

// Requests returns a copy of every request received so far
func (f *FakeRemote) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request
func (f *FakeRemote) LastRequest() (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}, false
	}
	return f.requests[len(f.requests)-1], true
}

// SessionCount returns the number of live sessions
func (f *FakeRemote) SessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *FakeRemote) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        req.Method,
			Path:          req.URL.Path,
			Header:        req.Header.Clone(),
			Body:          body,
			ContentLength: req.ContentLength,
		})
		f.mu.Unlock()

		return next(c)
	}
}

func (f *FakeRemote) status(c echo.Context) error {
	return reply(c, http.StatusOK, map[string]any{
		"ready":   true,
		"message": "fake remote end ready",
	})
}

func (f *FakeRemote) newSession(c echo.Context) error {
	var params map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&params); err != nil {
		return replyError(c, http.StatusBadRequest, "invalid argument", "body is not a JSON object")
	}

	caps, ok := params["capabilities"]
	if !ok {
		caps, ok = params["desiredCapabilities"]
	}
	if !ok {
		return replyError(c, http.StatusBadRequest, "invalid argument", "capabilities are required")
	}

	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("session-%d", f.nextID)
	f.sessions[id] = "about:blank"
	f.mu.Unlock()

	return reply(c, http.StatusOK, map[string]any{
		"sessionId":    id,
		"capabilities": caps,
	})
}

func (f *FakeRemote) deleteSession(c echo.Context) error {
	id := c.Param("id")

	f.mu.Lock()
	_, ok := f.sessions[id]
	delete(f.sessions, id)
	f.mu.Unlock()

	if !ok {
		return replyInvalidSession(c, id)
	}
	return reply(c, http.StatusOK, nil)
}

func (f *FakeRemote) getURL(c echo.Context) error {
	id := c.Param("id")

	f.mu.Lock()
	current, ok := f.sessions[id]
	f.mu.Unlock()

	if !ok {
		return replyInvalidSession(c, id)
	}
	return reply(c, http.StatusOK, current)
}

func (f *FakeRemote) navigate(c echo.Context) error {
	id := c.Param("id")

	var params struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&params); err != nil || params.URL == "" {
		return replyError(c, http.StatusBadRequest, "invalid argument", "url is required")
	}

	f.mu.Lock()
	_, ok := f.sessions[id]
	if ok {
		f.sessions[id] = params.URL
	}
	f.mu.Unlock()

	if !ok {
		return replyInvalidSession(c, id)
	}
	return reply(c, http.StatusOK, nil)
}

func (f *FakeRemote) echoBody(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return reply(c, http.StatusOK, nil)
	}
	return reply(c, http.StatusOK, json.RawMessage(body))
}

func replyInvalidSession(c echo.Context, id string) error {
	return replyError(c, http.StatusNotFound, "invalid session id", fmt.Sprintf("session %s does not exist", id))
}

func replyError(c echo.Context, status int, code, message string) error {
	return reply(c, status, map[string]any{
		"error":      code,
		"message":    message,
		"stacktrace": "",
	})
}

// reply writes the W3C {"value": ...} envelope with whitespace padding
func reply(c echo.Context, status int, value any) error {
	payload, err := json.Marshal(map[string]any{"value": value})
	if err != nil {
		return err
	}
	padded := replyPadding + string(payload) + replyPadding
	return c.Blob(status, echo.MIMEApplicationJSONCharsetUTF8, []byte(padded))
}
