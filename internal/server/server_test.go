package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-io/docchat/internal/chat"
	"github.com/docchat-io/docchat/internal/models"
	"github.com/docchat-io/docchat/internal/retriever"
	"github.com/docchat-io/docchat/internal/search"
	"github.com/docchat-io/docchat/internal/server"
	"github.com/docchat-io/docchat/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(context.Context, models.Conversation) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.5}, nil
}

type fakeIndex struct {
	docs []search.Document
	err  error
}

func (f *fakeIndex) Search(context.Context, []float32, int) ([]search.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeIndex) Close(context.Context) error { return nil }

type env struct {
	ts    *httptest.Server
	store store.Store
}

func newEnv(t *testing.T, completer chat.Completer, idx search.Index) *env {
	t.Helper()

	logger := testLogger()
	st := store.NewTieredStore(nil, logger)

	var r *retriever.Retriever
	if idx != nil {
		r = retriever.New(fakeEmbedder{}, idx, nil, logger)
	} else {
		r = retriever.New(nil, nil, nil, logger)
	}

	svc := chat.NewService(st, r, completer, nil, logger)

	srv := server.New(server.Deps{
		Chat:          svc,
		Retriever:     r,
		Store:         st,
		Logger:        logger,
		AuthUsername:  "admin",
		AuthPassword:  "secret",
		LLMConfigured: true,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &env{ts: ts, store: st}
}

func (e *env) post(t *testing.T, path, body string, authed bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.SetBasicAuth("admin", "secret")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestChatEndpoint(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "answer"}, nil)

	resp := e.post(t, "/api/chat", `{"message":"hello","conversation_id":"t1"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Response       string `json:"response"`
		ConversationID string `json:"conversation_id"`
		Storage        string `json:"storage"`
	}
	decode(t, resp, &body)

	assert.Equal(t, "answer", body.Response)
	assert.Equal(t, "t1", body.ConversationID)
	assert.Equal(t, "memory", body.Storage)

	conv, ok := e.store.Get(context.Background(), "t1")
	require.True(t, ok)
	require.Len(t, conv, 3)
	assert.Equal(t, models.RoleSystem, conv[0].Role)
	assert.Equal(t, models.RoleUser, conv[1].Role)
	assert.Equal(t, models.RoleAssistant, conv[2].Role)
}

func TestChatEndpointEmptyMessage(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "unused"}, nil)

	for _, body := range []string{`{"message":""}`, `{}`} {
		resp := e.post(t, "/api/chat", body, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}

	_, ok := e.store.Get(context.Background(), models.DefaultConversationID)
	assert.False(t, ok, "rejected request must not create state")
}

func TestChatEndpointUpstreamFailure(t *testing.T) {
	e := newEnv(t, &fakeCompleter{err: errors.New("deployment offline")}, nil)

	resp := e.post(t, "/api/chat", `{"message":"hello"}`, true)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Contains(t, body["error"], "deployment offline")
}

func TestResetEndpoint(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "ok"}, nil)
	ctx := context.Background()

	resp := e.post(t, "/api/chat", `{"message":"hello","conversation_id":"t1"}`, true)
	resp.Body.Close()
	_, ok := e.store.Get(ctx, "t1")
	require.True(t, ok)

	resp = e.post(t, "/api/reset", `{"conversation_id":"t1"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
		Storage string `json:"storage"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "Conversation reset successfully", body.Message)
	assert.Equal(t, "memory", body.Storage)

	_, ok = e.store.Get(ctx, "t1")
	assert.False(t, ok)

	// Reset is idempotent.
	resp = e.post(t, "/api/reset", `{"conversation_id":"t1"}`, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSearchEndpoint(t *testing.T) {
	idx := &fakeIndex{docs: []search.Document{
		{Title: "Handbook", Chunk: "vacation policy"},
	}}
	e := newEnv(t, &fakeCompleter{response: "ok"}, idx)

	resp := e.post(t, "/api/search", `{"query":"vacation"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []struct {
			Title string `json:"title"`
			Chunk string `json:"chunk"`
		} `json:"results"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Handbook", body.Results[0].Title)
}

func TestSearchEndpointValidation(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "ok"}, &fakeIndex{})

	resp := e.post(t, "/api/search", `{"query":""}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSearchEndpointUnconfigured(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "ok"}, nil)

	resp := e.post(t, "/api/search", `{"query":"anything"}`, true)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Contains(t, body["error"], "not configured")
}

func TestBasicAuthRequired(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "ok"}, nil)

	for _, path := range []string{"/api/chat", "/api/reset", "/api/search"} {
		resp := e.post(t, path, `{}`, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
		resp.Body.Close()
	}

	resp, err := http.Get(e.ts.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestBasicAuthRejectsBadCredentials(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "ok"}, nil)

	req, err := http.NewRequest(http.MethodPost, e.ts.URL+"/api/chat", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	req.SetBasicAuth("admin", "wrong")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthEndpointUnauthenticated(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "ok"}, nil)

	resp, err := http.Get(e.ts.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status     string `json:"status"`
		Redis      string `json:"redis"`
		Completion string `json:"completion"`
		Search     string `json:"search"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "disabled", body.Redis)
	assert.Equal(t, "configured", body.Completion)
	assert.Equal(t, "not configured", body.Search)
}

func TestStaticClientServed(t *testing.T) {
	e := newEnv(t, &fakeCompleter{response: "ok"}, nil)

	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/", nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
