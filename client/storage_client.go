package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Project is the client-side view of a saved project's metadata.
type Project struct {
	Key     string `json:"projectKey"`
	Name    string `json:"projectName"`
	Owner   string `json:"owner"`
	Public  bool   `json:"public"`
	Trashed bool   `json:"trashed"`
}

// SaveRequest is the save payload sent to POST /storage.
type SaveRequest struct {
	ProjectName   string `json:"projectName"`
	ProjectKey    string `json:"projectKey"`
	XML           string `json:"xml"`
	Pages         string `json:"pages"`
	MarkdownPages string `json:"markdownPages"`
}

// SaveResponse carries the protocol result of a save.
type SaveResponse struct {
	Status  int      `json:"status"`
	Key     string   `json:"key"`
	Project *Project `json:"project"`
	Message string   `json:"message"`
}

// LoadResponse carries the protocol result of a load.
type LoadResponse struct {
	Status     int      `json:"status"`
	XML        string   `json:"xml"`
	Project    *Project `json:"project"`
	ProjectKey string   `json:"projectKey"`
	CanModify  bool     `json:"canModify"`
	CanRename  bool     `json:"canRename"`
	Message    string   `json:"message"`
}

// ProtocolError is a non-200 body status from the storage protocol.
type ProtocolError struct {
	Status  int
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("storage protocol error %d: %s", e.Status, e.Message)
}

// StorageAPI is the save/load surface the session talks to. StorageClient
// implements it over HTTP; tests substitute fakes.
type StorageAPI interface {
	Save(ctx context.Context, req SaveRequest) (*SaveResponse, error)
	Load(ctx context.Context, key string) (*LoadResponse, error)
}

// StorageClient talks to the server's POST /storage endpoint.
type StorageClient struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// NewStorageClient builds a client for the given server base URL.
func NewStorageClient(baseURL string, log zerolog.Logger) *StorageClient {
	return &StorageClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// SetToken attaches the access token to subsequent requests. An empty
// token makes the client anonymous.
func (c *StorageClient) SetToken(token string) { c.token = token }

// Save posts the workspace payload. Transport failures are returned as
// errors; protocol denials arrive in the response status.
func (c *StorageClient) Save(ctx context.Context, req SaveRequest) (*SaveResponse, error) {
	body := struct {
		Type string `json:"type"`
		SaveRequest
	}{Type: "save", SaveRequest: req}
	var resp SaveResponse
	if err := c.post(ctx, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Load fetches the project stored under key.
func (c *StorageClient) Load(ctx context.Context, key string) (*LoadResponse, error) {
	body := struct {
		Type       string `json:"type"`
		ProjectKey string `json:"projectKey"`
	}{Type: "load", ProjectKey: key}
	var resp LoadResponse
	if err := c.post(ctx, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *StorageClient) post(ctx context.Context, body, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/storage", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("storage endpoint returned HTTP %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// Ensure StorageClient implements StorageAPI.
var _ StorageAPI = (*StorageClient)(nil)
