package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Submission outcomes as reported by the service.
const (
	StatusAccepted  = "accepted"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
)

// Client posts records to a running coffeeqc service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type submitBody struct {
	ID       string         `json:"id,omitempty"`
	Kind     string         `json:"kind"`
	SampleID string         `json:"sample_id,omitempty"`
	Fields   map[string]any `json:"fields"`
}

type ackBody struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmitResult is the service's answer for one record.
type SubmitResult struct {
	Source string `json:"source"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Submit posts one record to /v1/evaluations.
func (c *Client) Submit(ctx context.Context, kind string, rec Record) SubmitResult { //nolint:gocritic // hugeParam: read only
	res := SubmitResult{Source: rec.Source, ID: rec.ID, Status: StatusFailed}

	payload, err := json.Marshal(submitBody{ID: rec.ID, Kind: kind, SampleID: rec.SampleID, Fields: rec.Fields})
	if err != nil {
		res.Error = fmt.Sprintf("encode request: %v", err)
		return res
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/evaluations", bytes.NewReader(payload))
	if err != nil {
		res.Error = fmt.Sprintf("create request: %v", err)
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = fmt.Sprintf("read response: %v", err)
		return res
	}

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		var ack ackBody
		if err := json.Unmarshal(body, &ack); err == nil && ack.ID != "" {
			res.ID = ack.ID
		}
		res.Status = StatusAccepted
		if resp.StatusCode == http.StatusOK || ack.Duplicate {
			res.Status = StatusDuplicate
		}
	default:
		var e errorBody
		if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
			res.Error = fmt.Sprintf("%d %s: %s", resp.StatusCode, e.Code, e.Message)
		} else {
			res.Error = resp.Status
		}
	}
	return res
}

// SubmitSummary counts results by status.
type SubmitSummary struct {
	Accepted  int64
	Duplicate int64
	Failed    int64
}

// SubmitAll posts records with the given number of concurrent workers.
// Results keep the order of records.
func (c *Client) SubmitAll(ctx context.Context, kind string, records []Record, workers int) ([]SubmitResult, SubmitSummary) {
	if workers < 1 {
		workers = 1
	}
	results := make([]SubmitResult, len(records))
	var accepted, duplicate, failed atomic.Int64

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res := c.Submit(ctx, kind, records[idx])
				results[idx] = res
				switch res.Status {
				case StatusAccepted:
					accepted.Add(1)
				case StatusDuplicate:
					duplicate.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

	for i := range records {
		select {
		case <-ctx.Done():
			results[i] = SubmitResult{Source: records[i].Source, ID: records[i].ID, Status: StatusFailed, Error: ctx.Err().Error()}
			failed.Add(1)
			continue
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results, SubmitSummary{Accepted: accepted.Load(), Duplicate: duplicate.Load(), Failed: failed.Load()}
}
