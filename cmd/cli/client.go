package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-yakovlev/sealnote/internal/convert"
)

// apiClient talks to the sealnote JSON API.
type apiClient struct {
	base string
	hc   *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{base: base, hc: &http.Client{Timeout: 30 * time.Second}}
}

// apiError carries the server's machine-readable error kind.
type apiError struct {
	Status           int
	Kind             string
	Message          string
	RequiresPassword bool
}

func (e *apiError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func (c *apiClient) createNote(ctx context.Context, req convert.CreateNoteRequest) (*convert.CreateNoteResponse, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/notes", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out convert.CreateNoteResponse
	if err := c.do(httpReq, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) readNote(ctx context.Context, id, password string) (*convert.NoteResponse, error) {
	u := c.base + "/api/notes/" + id
	if password != "" {
		u += "?password=" + queryEscape(password)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var out convert.NoteResponse
	if err := c.do(httpReq, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) deleteNote(ctx context.Context, id, token string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/api/notes/"+id, nil)
	if err != nil {
		return err
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(httpReq, http.StatusOK, nil)
}

func (c *apiClient) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		var envelope struct {
			Error struct {
				Kind    string `json:"kind"`
				Message string `json:"message"`
			} `json:"error"`
			RequiresPassword bool `json:"requiresPassword"`
		}
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Error.Kind != "" {
			return &apiError{
				Status:           resp.StatusCode,
				Kind:             envelope.Error.Kind,
				Message:          envelope.Error.Message,
				RequiresPassword: envelope.RequiresPassword,
			}
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// requiresPassword reports whether err is the server prompting for a password.
func requiresPassword(err error) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.RequiresPassword
}
