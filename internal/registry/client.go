// internal/registry/client.go
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Register announces a game server endpoint to the directory service at
// addr. Calling it again before the TTL lapses acts as a heartbeat.
func Register(ctx context.Context, addr string, h Host) error {
	if err := h.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal host: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+addr+"/hosts/register", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry unreachable at %s: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry rejected registration: %s", resp.Status)
	}
	return nil
}

// ListHosts fetches the set of live (host, port) pairs from the directory
// service at addr.
func ListHosts(ctx context.Context, addr string) ([]Host, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/hosts", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry unreachable at %s: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry list failed: %s", resp.Status)
	}
	var hosts []Host
	if err := json.NewDecoder(resp.Body).Decode(&hosts); err != nil {
		return nil, fmt.Errorf("failed to decode host list: %w", err)
	}
	return hosts, nil
}

// Heartbeat re-registers h every interval until ctx is cancelled. Failures
// are logged and retried on the next tick.
func Heartbeat(ctx context.Context, addr string, h Host, interval time.Duration, logger *logrus.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := Register(ctx, addr, h); err != nil {
				logger.Warnf("registry heartbeat failed: %v", err)
			}
		}
	}
}
