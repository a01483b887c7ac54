package assistantopenai

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/Abraxas-365/mosaic/pkg/fsx"
	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/tidwall/gjson"
)

// DefaultIndexName names the vector store created for an assistant that has none.
const DefaultIndexName = "Job Hunt Knowledge Base"

// Config configures the provider
type Config struct {
	APIKey    string
	BaseURL   string
	IndexName string
}

// Provider implements assistant.Backend and assistant.DocumentStore over the
// OpenAI Assistants v2 API. The SDK only types the deprecated beta surface
// partially, so the thread and run endpoints go through the client's raw
// request methods and the SSE body is read with the SDK's decoder.
type Provider struct {
	client    openai.Client
	indexName string
}

var (
	_ assistant.Backend       = (*Provider)(nil)
	_ assistant.DocumentStore = (*Provider)(nil)
)

// NewProvider creates a new OpenAI assistant provider
func NewProvider(cfg Config, opts ...option.RequestOption) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errorRegistry.New(ErrMissingAPIKey)
	}
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndexName
	}

	options := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHeader("OpenAI-Beta", "assistants=v2"),
	}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	options = append(options, opts...)

	return &Provider{
		client:    openai.NewClient(options...),
		indexName: cfg.IndexName,
	}, nil
}

// ============================================================================
// Backend Implementation
// ============================================================================

func (p *Provider) CreateConversation(ctx context.Context) (string, error) {
	var res struct {
		ID string `json:"id"`
	}
	if err := p.client.Post(ctx, "threads", map[string]any{}, &res); err != nil {
		return "", ParseOpenAIError(err)
	}
	if res.ID == "" {
		return "", errorRegistry.New(ErrAPIResponse).WithDetail("reason", "thread without id")
	}
	return res.ID, nil
}

func (p *Provider) AppendMessage(ctx context.Context, conversationID, text string) error {
	body := map[string]any{
		"role":    "user",
		"content": text,
	}
	if err := p.client.Post(ctx, threadPath(conversationID, "messages"), body, nil); err != nil {
		return ParseOpenAIError(err).WithDetail("thread_id", conversationID)
	}
	return nil
}

func (p *Provider) StreamGeneration(ctx context.Context, conversationID, assistantID string) (assistant.Stream, error) {
	body := map[string]any{
		"assistant_id": assistantID,
		"stream":       true,
	}
	return p.stream(ctx, threadPath(conversationID, "runs"), body)
}

func (p *Provider) SubmitToolOutputs(ctx context.Context, conversationID, runID string, outputs []assistant.ToolOutput) (assistant.Stream, error) {
	body := map[string]any{
		"tool_outputs": outputs,
		"stream":       true,
	}
	path := threadPath(conversationID, "runs", runID, "submit_tool_outputs")
	return p.stream(ctx, path, body)
}

func (p *Provider) stream(ctx context.Context, path string, body any) (assistant.Stream, error) {
	var raw *http.Response
	err := p.client.Post(ctx, path, body, &raw, option.WithHeader("Accept", "text/event-stream"))
	if err != nil {
		return nil, ParseOpenAIError(err)
	}
	return newRunStream(ssestream.NewDecoder(raw)), nil
}

// ============================================================================
// DocumentStore Implementation
// ============================================================================

func (p *Provider) UploadFile(ctx context.Context, filename string, data []byte) (string, error) {
	file, err := p.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(data), filename, fsx.DetectContentType(filename)),
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return "", ParseOpenAIError(err).WithDetail("filename", filename)
	}
	return file.ID, nil
}

func (p *Provider) EnsureIndex(ctx context.Context, assistantID string) (string, error) {
	var raw []byte
	if err := p.client.Get(ctx, "assistants/"+url.PathEscape(assistantID), nil, &raw); err != nil {
		return "", ParseOpenAIError(err).WithDetail("assistant_id", assistantID)
	}

	if id := gjson.GetBytes(raw, "tool_resources.file_search.vector_store_ids.0").String(); id != "" {
		return id, nil
	}

	var store struct {
		ID string `json:"id"`
	}
	if err := p.client.Post(ctx, "vector_stores", map[string]any{"name": p.indexName}, &store); err != nil {
		return "", ParseOpenAIError(err)
	}
	if store.ID == "" {
		return "", errorRegistry.New(ErrAPIResponse).WithDetail("reason", "vector store without id")
	}

	update := map[string]any{
		"tools": withFileSearch(gjson.GetBytes(raw, "tools")),
		"tool_resources": map[string]any{
			"file_search": map[string]any{"vector_store_ids": []string{store.ID}},
		},
	}
	if err := p.client.Post(ctx, "assistants/"+url.PathEscape(assistantID), update, nil); err != nil {
		return "", ParseOpenAIError(err).WithDetail("assistant_id", assistantID)
	}

	logx.WithFields(logx.Fields{
		"assistant_id": assistantID,
		"index_id":     store.ID,
		"name":         p.indexName,
	}).Info("📚 Created knowledge index")
	return store.ID, nil
}

func (p *Provider) Attach(ctx context.Context, indexID, fileID string) error {
	path := "vector_stores/" + url.PathEscape(indexID) + "/files"
	if err := p.client.Post(ctx, path, map[string]any{"file_id": fileID}, nil); err != nil {
		return ParseOpenAIError(err).WithDetail("index_id", indexID).WithDetail("file_id", fileID)
	}
	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func threadPath(threadID string, rest ...string) string {
	path := "threads/" + url.PathEscape(threadID)
	for _, r := range rest {
		path += "/" + url.PathEscape(r)
	}
	return path
}

// withFileSearch keeps the assistant's existing tools and adds file_search
// when it is missing.
func withFileSearch(tools gjson.Result) []any {
	out := make([]any, 0)
	found := false
	tools.ForEach(func(_, t gjson.Result) bool {
		if t.Get("type").String() == "file_search" {
			found = true
		}
		out = append(out, t.Value())
		return true
	})
	if !found {
		out = append(out, map[string]any{"type": "file_search"})
	}
	return out
}
