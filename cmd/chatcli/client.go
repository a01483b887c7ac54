package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/Abraxas-365/mosaic/pkg/sse"
)

// client talks to a running Mosaic server.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, hc *http.Client) *client {
	return &client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// chat sends one message and applies every streamed event to tr, calling
// onEvent as each one arrives.
func (c *client) chat(ctx context.Context, message, threadID string, tr *sse.Transcript, onEvent func(sse.Event)) error {
	body, err := json.Marshal(map[string]string{"message": message, "threadId": threadID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	return sse.Consume(ctx, resp.Body, func(ev sse.Event) error {
		tr.Apply(ev)
		if onEvent != nil {
			onEvent(ev)
		}
		return nil
	})
}

// upload posts a local file to the knowledge index and returns its file id.
func (c *client) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}
	var out struct {
		Success bool   `json:"success"`
		FileID  string `json:"fileId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.FileID, nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errx.HTTPErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
