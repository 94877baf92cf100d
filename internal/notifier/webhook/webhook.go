// Package webhook delivers sweep alerts to an HTTP(S) endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

// Config controls the webhook notifier.
type Config struct {
	// Endpoint receives one JSON payload {"text": message} per sweep.
	Endpoint string
	// Timeout bounds the delivery request.
	Timeout time.Duration
}

// Notifier posts one batched alert per sweep to the configured endpoint.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New builds a Notifier. The endpoint must be non-empty; callers disable
// notifications by not constructing one.
func New(cfg Config, logger *zap.Logger) (*Notifier, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// Notify sends a single request summarizing the whole batch. An empty batch
// is a no-op. Delivery failures are returned for the caller to log; there is
// no retry.
func (n *Notifier) Notify(ctx context.Context, changes []monitor.Change) error {
	if len(changes) == 0 {
		return nil
	}
	payload, err := json.Marshal(map[string]string{
		"text": ComposeMessage(changes),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return &monitor.NotificationError{Kind: monitor.NotifyTransport, Err: err}
	}
	defer func() {
		if _, cerr := io.Copy(io.Discard, resp.Body); cerr != nil {
			n.logger.Debug("drain webhook response failed", zap.Error(cerr))
		}
		if cerr := resp.Body.Close(); cerr != nil {
			n.logger.Debug("close webhook response failed", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &monitor.NotificationError{Kind: monitor.NotifyStatus, StatusCode: resp.StatusCode}
	}
	n.logger.Info("alert delivered", zap.Int("changes", len(changes)))
	return nil
}

// ComposeMessage renders the human-readable alert for a batch of changes:
// a header with the count and detection time, then one line per change with
// category, name, and link. The framing is elevated when any change carries
// the critical priority tier.
func ComposeMessage(changes []monitor.Change) string {
	var b strings.Builder

	critical := false
	for _, c := range changes {
		if c.Priority == monitor.PriorityCritical {
			critical = true
			break
		}
	}

	if critical {
		b.WriteString("[URGENT] ")
	}
	detected := changes[0].DetectedAt.UTC().Format("2006-01-02 15:04 UTC")
	fmt.Fprintf(&b, "%d monitored page(s) changed, detected %s\n", len(changes), detected)

	for _, c := range changes {
		fmt.Fprintf(&b, "- [%s] %s", c.Category, c.DisplayName)
		if c.Priority != "" {
			fmt.Fprintf(&b, " (%s)", c.Priority)
		}
		fmt.Fprintf(&b, ": %s\n", c.SourceID)
	}
	return strings.TrimRight(b.String(), "\n")
}
