package simulate

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

	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/types"
	"github.com/okian/bounceland/pkg/logger"
)

// callerHeader carries the simulated user id.
const callerHeader = "X-User-ID"

// Client talks JSON to the service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Get fetches path and decodes the JSON body into dst.
func (c *Client) Get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, dst)
}

// Post sends body as JSON on behalf of userID and decodes the reply into dst.
func (c *Client) Post(ctx context.Context, path, userID string, body, dst any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(callerHeader, userID)
	return c.do(req, dst)
}

func (c *Client) do(req *http.Request, dst any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// submit sends one press and classifies the reply.
func submit(ctx context.Context, c *Client, p Press) (Result, error) {
	path, body := route(p)
	var resp types.InteractionResponse
	if err := c.Post(ctx, path, p.UserID, body, &resp); err != nil {
		return ResultFailed, err
	}
	if resp.Duplicate {
		return ResultDuplicate, nil
	}
	return ResultApplied, nil
}

// route picks the endpoint and request body for p.
func route(p Press) (string, any) {
	if p.ViaAction {
		action := "MODE|" + p.Mode
		if p.Kind == KindWeek {
			action = "WEEK|" + p.WeekID + "|" + p.Choice
		}
		return "/actions", types.ActionRequest{RequestID: p.RequestID, Action: action, Name: p.Name}
	}
	if p.Kind == KindWeek {
		return "/bounceland/weeks", types.WeekRequest{RequestID: p.RequestID, WeekID: p.WeekID, Choice: p.Choice, Name: p.Name}
	}
	return "/bounceland/modes", types.ModeRequest{RequestID: p.RequestID, Mode: p.Mode, Name: p.Name}
}

// submitPresses submits presses concurrently using a worker pool.
func submitPresses(ctx context.Context, cfg *Config, c *Client, presses []Press, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting presses", logger.Int("presses", len(presses)), logger.Int("workers", cfg.Workers))

	var applied, duplicate, failed, submitted int64

	pressChan := make(chan Press, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range pressChan {
				result, err := submit(ctx, c, p)
				atomic.AddInt64(&submitted, 1)
				switch result {
				case ResultApplied:
					atomic.AddInt64(&applied, 1)
				case ResultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				case ResultFailed:
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "press failed", logger.String("requestId", p.RequestID), logger.Error(err))
					}
				}
			}
		}()
	}

	go func() {
		defer close(pressChan)
		for _, p := range presses {
			select {
			case <-ctx.Done():
				return
			case pressChan <- p:
			}
		}
	}()

	wg.Wait()

	stats.PressesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.Applied = int(atomic.LoadInt64(&applied))
	stats.Duplicates = int(atomic.LoadInt64(&duplicate))
	stats.Failed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "press submission completed",
		logger.Int("applied", stats.Applied),
		logger.Int("duplicate", stats.Duplicates),
		logger.Int("failed", stats.Failed))
}

// fetchDataset reads the attendance dataset.
func fetchDataset(ctx context.Context, c *Client) (*model.Dataset, error) {
	var ds model.Dataset
	if err := c.Get(ctx, "/bounceland/dataset", &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
