// Package remote wraps the hosted counter store (a Supabase/PostgREST table)
// behind typed per-row operations. No retries and no extra timeouts happen at
// this layer; every failure surfaces as a *TransportError for the counter
// service to turn into a local-store fallback.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3/client"

	"github.com/bericyb/dislinkedIn/internal/model"
)

const tablePath = "/rest/v1/post_dislikes"

// TransportError reports a network failure or an unexpected HTTP status from
// the remote store.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote %s: unexpected status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to one post_dislikes table.
type Client struct {
	cc      *client.Client
	baseURL string
}

// New creates a Client for the given Supabase project URL and API key. The
// key is sent both as the apikey header and as a bearer token, matching the
// PostgREST auth scheme.
func New(baseURL, apiKey string) *Client {
	cc := client.New()
	cc.SetJSONMarshal(json.Marshal)
	cc.SetJSONUnmarshal(json.Unmarshal)
	cc.SetHeader("Content-Type", "application/json")
	cc.SetHeader("apikey", apiKey)
	cc.SetHeader("Authorization", "Bearer "+apiKey)

	return &Client{cc: cc, baseURL: baseURL}
}

// Get returns the record for the given URN, or nil when no row exists.
func (c *Client) Get(ctx context.Context, postURN string) (*model.DislikeRecord, error) {
	resp, err := c.cc.Get(c.baseURL+tablePath, client.Config{
		Ctx:   ctx,
		Param: map[string]string{"post_urn": "eq." + postURN},
	})
	if err != nil {
		return nil, &TransportError{Op: "get", Err: err}
	}
	defer resp.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &TransportError{Op: "get", Status: resp.StatusCode()}
	}

	var rows []model.DislikeRecord
	if err := resp.JSON(&rows); err != nil {
		return nil, &TransportError{Op: "get", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Insert creates a record with count 1. A uniqueness conflict (another actor
// created the row concurrently) is recovered by redirecting to Increment.
func (c *Client) Insert(ctx context.Context, postURN string) (*model.DislikeRecord, error) {
	resp, err := c.cc.Post(c.baseURL+tablePath, client.Config{
		Ctx:    ctx,
		Header: map[string]string{"Prefer": "return=representation"},
		Body:   model.InsertPayload{PostURN: postURN, DislikeCount: 1},
	})
	if err != nil {
		return nil, &TransportError{Op: "insert", Err: err}
	}
	defer resp.Close()

	if resp.StatusCode() == 409 {
		return c.Increment(ctx, postURN)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &TransportError{Op: "insert", Status: resp.StatusCode()}
	}

	var rows []model.DislikeRecord
	if err := resp.JSON(&rows); err == nil && len(rows) > 0 {
		return &rows[0], nil
	}
	// Store answered 201 without a representation; re-read for the row.
	rec, err := c.Get(ctx, postURN)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &model.DislikeRecord{PostURN: postURN, DislikeCount: 1}
	}
	return rec, nil
}

// Increment raises the count by one and returns the authoritative row.
// Read-modify-write without compare-and-swap: concurrent increments from
// multiple viewers can lose updates. Known limitation.
func (c *Client) Increment(ctx context.Context, postURN string) (*model.DislikeRecord, error) {
	current, err := c.Get(ctx, postURN)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return c.Insert(ctx, postURN)
	}

	if err := c.patchCount(ctx, postURN, current.DislikeCount+1); err != nil {
		return nil, err
	}
	return c.reread(ctx, postURN, current.DislikeCount+1)
}

// Decrement lowers the count by one. At count <= 1 (or with no row at all)
// the record is removed instead, so the stored count never goes negative.
func (c *Client) Decrement(ctx context.Context, postURN string) (*model.DislikeRecord, error) {
	current, err := c.Get(ctx, postURN)
	if err != nil {
		return nil, err
	}
	if current == nil || current.DislikeCount <= 1 {
		return c.Remove(ctx, postURN)
	}

	next := current.DislikeCount - 1
	if next < 0 {
		next = 0
	}
	if err := c.patchCount(ctx, postURN, next); err != nil {
		return nil, err
	}
	return c.reread(ctx, postURN, next)
}

// Remove deletes the row and returns a zero record.
func (c *Client) Remove(ctx context.Context, postURN string) (*model.DislikeRecord, error) {
	resp, err := c.cc.Delete(c.baseURL+tablePath, client.Config{
		Ctx:   ctx,
		Param: map[string]string{"post_urn": "eq." + postURN},
	})
	if err != nil {
		return nil, &TransportError{Op: "delete", Err: err}
	}
	defer resp.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &TransportError{Op: "delete", Status: resp.StatusCode()}
	}
	return &model.DislikeRecord{PostURN: postURN, DislikeCount: 0}, nil
}

// GetAll reads every record, keyed by URN. Used for the initial sync and the
// settings surface.
func (c *Client) GetAll(ctx context.Context) (map[string]int, error) {
	resp, err := c.cc.Get(c.baseURL+tablePath, client.Config{Ctx: ctx})
	if err != nil {
		return nil, &TransportError{Op: "getAll", Err: err}
	}
	defer resp.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &TransportError{Op: "getAll", Status: resp.StatusCode()}
	}

	var rows []model.DislikeRecord
	if err := resp.JSON(&rows); err != nil {
		return nil, &TransportError{Op: "getAll", Err: err}
	}

	dislikes := make(map[string]int, len(rows))
	for _, row := range rows {
		dislikes[row.PostURN] = row.DislikeCount
	}
	return dislikes, nil
}

func (c *Client) patchCount(ctx context.Context, postURN string, count int) error {
	resp, err := c.cc.Patch(c.baseURL+tablePath, client.Config{
		Ctx:   ctx,
		Param: map[string]string{"post_urn": "eq." + postURN},
		Body:  model.UpdatePayload{DislikeCount: count, UpdatedAt: time.Now().UTC()},
	})
	if err != nil {
		return &TransportError{Op: "patch", Err: err}
	}
	defer resp.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &TransportError{Op: "patch", Status: resp.StatusCode()}
	}
	return nil
}

func (c *Client) reread(ctx context.Context, postURN string, fallbackCount int) (*model.DislikeRecord, error) {
	rec, err := c.Get(ctx, postURN)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &model.DislikeRecord{PostURN: postURN, DislikeCount: fallbackCount}
	}
	return rec, nil
}
