package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// ErrReleased is returned when opening a handle after Release.
var ErrReleased = errors.New("audio handle released")

// LocalHandle keeps a local file's bytes in memory for the lifetime of its
// track. Release drops them.
type LocalHandle struct {
	mu       sync.Mutex
	path     string
	data     []byte
	released bool
}

// NewLocalHandle reads the file at path into memory.
func NewLocalHandle(path string) (*LocalHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &LocalHandle{path: path, data: data}, nil
}

// URI returns the file path.
func (h *LocalHandle) URI() string {
	return h.path
}

// Open returns a reader over the in-memory audio.
func (h *LocalHandle) Open(ctx context.Context) (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, fmt.Errorf("%s: %w", h.path, ErrReleased)
	}
	return io.NopCloser(bytes.NewReader(h.data)), nil
}

// Size returns the number of bytes held, 0 after release.
func (h *LocalHandle) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.data)
}

// Released reports whether Release has been called.
func (h *LocalHandle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release drops the in-memory audio.
func (h *LocalHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = nil
	h.released = true
	return nil
}

// RemoteHandle streams audio from a URL.
type RemoteHandle struct {
	url    string
	client *http.Client
}

// NewRemoteHandle creates a handle for url. A nil client uses a client with a
// 30 second timeout.
func NewRemoteHandle(url string, client *http.Client) *RemoteHandle {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RemoteHandle{url: url, client: client}
}

// URI returns the remote URL.
func (h *RemoteHandle) URI() string {
	return h.url
}

// Open starts a GET request for the audio.
func (h *RemoteHandle) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status fetching audio: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Release is a no-op; remote handles hold nothing between opens.
func (h *RemoteHandle) Release() error {
	return nil
}
