package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gardar/ticketseries/pkg/layouterr"
)

// GeneratePath is the renderer endpoint.
const GeneratePath = "/api/vector/generate"

// Renderer turns Metadata into a PDF.
type Renderer interface {
	Generate(ctx context.Context, m Metadata) (Response, error)
}

// Response is the renderer's answer. Both fields are required.
type Response struct {
	PdfURL string `json:"pdfUrl"`
	Key    string `json:"key"`
}

// ClientConfig holds configuration for the renderer client.
type ClientConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client calls the external renderer over HTTP. There are no retries.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a renderer client.
func NewClient(cfg ClientConfig) *Client {
	url := strings.TrimRight(cfg.URL, "/")
	if url == "" {
		url = "http://localhost:3000"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: url,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type generateRequest struct {
	VectorMetadata Metadata `json:"vectorMetadata"`
}

type generateResponse struct {
	Response
	Message string `json:"message"`
}

// Generate posts m to the renderer. A non-OK status or a response missing
// pdfUrl or key is a remote error.
func (c *Client) Generate(ctx context.Context, m Metadata) (Response, error) {
	body, err := json.Marshal(generateRequest{VectorMetadata: m})
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode vector metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GeneratePath, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, layouterr.New(layouterr.ErrRendererFailed, layouterr.CategoryRemote,
			"vector PDF generation failed").WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, layouterr.New(layouterr.ErrRendererFailed, layouterr.CategoryRemote,
			"failed to read renderer response").WithCause(err)
	}
	var data generateResponse
	// a body that is not JSON is treated like an empty object
	_ = json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := data.Message
		if msg == "" {
			msg = "vector PDF generation failed"
		}
		return Response{}, layouterr.New(layouterr.ErrRendererFailed, layouterr.CategoryRemote, msg).
			WithContext("status", fmt.Sprint(resp.StatusCode))
	}
	if data.PdfURL == "" {
		return Response{}, layouterr.New(layouterr.ErrRendererResponse, layouterr.CategoryRemote,
			"missing pdfUrl from "+GeneratePath)
	}
	if data.Key == "" {
		return Response{}, layouterr.New(layouterr.ErrRendererResponse, layouterr.CategoryRemote,
			"missing key from "+GeneratePath)
	}
	return data.Response, nil
}
