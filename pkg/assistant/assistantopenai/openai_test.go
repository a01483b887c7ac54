package assistantopenai

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	beta   string
	body   map[string]any
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	routes   map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Provider) {
	api := &fakeAPI{routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, beta: r.Header.Get("OpenAI-Beta")}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		api.mu.Lock()
		api.requests = append(api.requests, rec)
		h, ok := api.routes[r.Method+" "+r.URL.Path]
		api.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"message":"No thread found with id 'missing'.","type":"invalid_request_error"}}`)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	p, err := NewProvider(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"}, option.WithMaxRetries(0))
	require.NoError(t, err)
	return api, p
}

func (a *fakeAPI) handle(route string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[route] = h
}

func (a *fakeAPI) last() recorded {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[len(a.requests)-1]
}

func jsonReply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func sseReply(events ...[2]string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		compact := strings.NewReplacer("\n", "", "\t", "")
		for _, ev := range events {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev[0], compact.Replace(ev[1]))
		}
	}
}

func collect(t *testing.T, s assistant.Stream) []assistant.Event {
	t.Helper()
	defer s.Close()
	var out []assistant.Event
	for s.Next() {
		out = append(out, s.Current())
	}
	require.NoError(t, s.Err())
	return out
}

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := NewProvider(Config{})
	var e *errx.Error
	require.True(t, errx.As(err, &e))
	assert.Equal(t, ErrMissingAPIKey.Code, e.Code)
}

func TestProvider_ConversationLifecycle(t *testing.T) {
	api, p := newFakeAPI(t)
	ctx := t.Context()

	api.handle("POST /threads", jsonReply(`{"id":"thread_1","object":"thread"}`))
	id, err := p.CreateConversation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "thread_1", id)
	assert.Equal(t, "assistants=v2", api.last().beta)

	api.handle("POST /threads/thread_1/messages", jsonReply(`{"id":"msg_1"}`))
	require.NoError(t, p.AppendMessage(ctx, "thread_1", "hello"))
	assert.Equal(t, map[string]any{"role": "user", "content": "hello"}, api.last().body)
}

func TestProvider_StreamGeneration(t *testing.T) {
	api, p := newFakeAPI(t)

	api.handle("POST /threads/thread_1/runs", sseReply(
		[2]string{"thread.run.created", `{"id":"run_1","status":"queued"}`},
		[2]string{"thread.run.queued", `{"id":"run_1"}`},
		[2]string{"thread.message.created", `{"id":"msg_2"}`},
		[2]string{"thread.message.delta", `{"id":"msg_2","delta":{"content":[{"index":0,"type":"text","text":{"value":"Hel"}}]}}`},
		[2]string{"thread.message.delta", `{"id":"msg_2","delta":{"content":[{"index":0,"type":"text","text":{"value":"lo"}}]}}`},
		[2]string{"thread.run.requires_action", `{"id":"run_1","required_action":{"type":"submit_tool_outputs","submit_tool_outputs":{"tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"book_meeting","arguments":"{}"}},
			{"id":"call_2","type":"function","function":{"name":"email_resume","arguments":"{\"email\":\"a@b.com\"}"}}]}}}`},
		[2]string{"done", "[DONE]"},
	))

	s, err := p.StreamGeneration(t.Context(), "thread_1", "asst_1")
	require.NoError(t, err)
	events := collect(t, s)

	assert.Equal(t, map[string]any{"assistant_id": "asst_1", "stream": true}, api.last().body)
	require.Len(t, events, 4)
	assert.Equal(t, assistant.Event{Kind: assistant.KindRunCreated, RunID: "run_1"}, events[0])
	assert.Equal(t, "Hel", events[1].Text)
	assert.Equal(t, "lo", events[2].Text)
	assert.Equal(t, assistant.KindToolCallsRequired, events[3].Kind)
	assert.Equal(t, "run_1", events[3].RunID)
	assert.Equal(t, []assistant.ToolCall{
		{ID: "call_1", Name: "book_meeting", Arguments: "{}"},
		{ID: "call_2", Name: "email_resume", Arguments: `{"email":"a@b.com"}`},
	}, events[3].ToolCalls)
}

func TestProvider_SubmitToolOutputs(t *testing.T) {
	api, p := newFakeAPI(t)

	api.handle("POST /threads/thread_1/runs/run_1/submit_tool_outputs", sseReply(
		[2]string{"thread.message.delta", `{"delta":{"content":[{"type":"text","text":{"value":"Done."}}]}}`},
		[2]string{"thread.run.completed", `{"id":"run_1","status":"completed"}`},
	))

	s, err := p.SubmitToolOutputs(t.Context(), "thread_1", "run_1", []assistant.ToolOutput{
		{ToolCallID: "call_1", Output: `{"success":true}`},
	})
	require.NoError(t, err)
	events := collect(t, s)

	body := api.last().body
	assert.Equal(t, true, body["stream"])
	assert.Equal(t, []any{map[string]any{"tool_call_id": "call_1", "output": `{"success":true}`}}, body["tool_outputs"])
	require.Len(t, events, 2)
	assert.Equal(t, "Done.", events[0].Text)
	assert.Equal(t, assistant.KindRunCompleted, events[1].Kind)
}

func TestProvider_FailureEvents(t *testing.T) {
	tests := []struct {
		name   string
		event  [2]string
		reason string
	}{
		{"failed", [2]string{"thread.run.failed", `{"id":"run_1","last_error":{"code":"server_error","message":"Sorry, something went wrong."}}`}, "Sorry, something went wrong."},
		{"failed without detail", [2]string{"thread.run.failed", `{"id":"run_1","last_error":null}`}, "Run failed"},
		{"expired", [2]string{"thread.run.expired", `{"id":"run_1"}`}, "Run expired"},
		{"cancelled", [2]string{"thread.run.cancelled", `{"id":"run_1"}`}, "Run cancelled"},
		{"incomplete", [2]string{"thread.run.incomplete", `{"id":"run_1","incomplete_details":{"reason":"max_completion_tokens"}}`}, "max_completion_tokens"},
		{"error event", [2]string{"error", `{"error":{"message":"overloaded"}}`}, "overloaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, p := newFakeAPI(t)
			api.handle("POST /threads/thread_1/runs", sseReply(tt.event))

			s, err := p.StreamGeneration(t.Context(), "thread_1", "asst_1")
			require.NoError(t, err)
			events := collect(t, s)
			require.Len(t, events, 1)
			assert.Equal(t, assistant.KindRunFailed, events[0].Kind)
			assert.Equal(t, tt.reason, events[0].Reason)
		})
	}
}

func TestProvider_HTTPErrors(t *testing.T) {
	api, p := newFakeAPI(t)

	err := p.AppendMessage(t.Context(), "missing", "hi")
	var e *errx.Error
	require.True(t, errx.As(err, &e))
	assert.Equal(t, ErrNotFound.Code, e.Code)
	assert.Equal(t, http.StatusNotFound, e.Details["status_code"])
	assert.Equal(t, "missing", e.Details["thread_id"])

	api.handle("POST /threads", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","code":"invalid_api_key"}}`)
	})
	_, err = p.CreateConversation(t.Context())
	require.True(t, errx.As(err, &e))
	assert.Equal(t, ErrAPIUnauthorized.Code, e.Code)
	assert.Equal(t, http.StatusUnauthorized, e.Details["status_code"])
}

func TestProvider_EnsureIndex_Reuses(t *testing.T) {
	api, p := newFakeAPI(t)
	api.handle("GET /assistants/asst_1", jsonReply(`{"id":"asst_1","tools":[{"type":"file_search"}],"tool_resources":{"file_search":{"vector_store_ids":["vs_existing"]}}}`))

	id, err := p.EnsureIndex(t.Context(), "asst_1")
	require.NoError(t, err)
	assert.Equal(t, "vs_existing", id)
	assert.Len(t, api.requests, 1)
}

func TestProvider_EnsureIndex_Creates(t *testing.T) {
	api, p := newFakeAPI(t)
	api.handle("GET /assistants/asst_1", jsonReply(`{"id":"asst_1","tools":[{"type":"function","function":{"name":"book_meeting"}}],"tool_resources":{}}`))
	api.handle("POST /vector_stores", jsonReply(`{"id":"vs_new","name":"Job Hunt Knowledge Base"}`))
	api.handle("POST /assistants/asst_1", jsonReply(`{"id":"asst_1"}`))
	api.handle("POST /vector_stores/vs_new/files", jsonReply(`{"id":"file_1"}`))

	id, err := p.EnsureIndex(t.Context(), "asst_1")
	require.NoError(t, err)
	assert.Equal(t, "vs_new", id)

	require.Len(t, api.requests, 3)
	assert.Equal(t, map[string]any{"name": DefaultIndexName}, api.requests[1].body)

	update := api.requests[2].body
	tools := update["tools"].([]any)
	require.Len(t, tools, 2)
	assert.Equal(t, "function", tools[0].(map[string]any)["type"])
	assert.Equal(t, map[string]any{"type": "file_search"}, tools[1])
	assert.Equal(t, map[string]any{"file_search": map[string]any{"vector_store_ids": []any{"vs_new"}}}, update["tool_resources"])

	require.NoError(t, p.Attach(t.Context(), "vs_new", "file_1"))
	assert.Equal(t, map[string]any{"file_id": "file_1"}, api.last().body)
}

func TestProvider_UploadFile(t *testing.T) {
	api, p := newFakeAPI(t)
	var purpose, filename, content string
	api.handle("POST /files", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			purpose = r.FormValue("purpose")
			if f, h, err := r.FormFile("file"); err == nil {
				filename = h.Filename
				b, _ := io.ReadAll(f)
				content = string(b)
			}
		}
		jsonReply(`{"id":"file_9","object":"file","purpose":"assistants","filename":"notes.md","bytes":5,"created_at":0,"status":"processed"}`)(w, r)
	})

	id, err := p.UploadFile(t.Context(), "notes.md", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "file_9", id)
	assert.Equal(t, "assistants", purpose)
	assert.Equal(t, "notes.md", filename)
	assert.Equal(t, "hello", content)
}
