// Package reversal initiates transaction reversals through the payment
// platform's JMX management interface.
package reversal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arkantrust/abassist/models"
)

// ErrDispatch is returned when the management interface rejects or fails a
// reversal request.
var ErrDispatch = errors.New("reversal dispatch failed")

// Dispatcher sends a reversal request for a transaction.
type Dispatcher interface {
	Initiate(ctx context.Context, txnID, reason string) (*models.ReversalResult, error)
}

// Dispatcher kinds accepted by NewDispatcher.
const (
	KindMock    = "mock"
	KindJolokia = "jolokia"
)

// JMXConfig locates the reversal operation on the management interface.
type JMXConfig struct {
	Host      string
	Port      int
	MBean     string
	Operation string
}

// DefaultOperation is the MBean operation that reverses a transaction.
const DefaultOperation = "reverseTransaction"

// NewDispatcher returns the dispatcher of the given kind. An empty kind
// selects the mock.
func NewDispatcher(kind string, cfg JMXConfig, logger *slog.Logger) (Dispatcher, error) {
	switch kind {
	case "", KindMock:
		return NewMockDispatcher(logger), nil
	case KindJolokia:
		return NewJolokiaDispatcher(cfg, nil, logger), nil
	default:
		return nil, fmt.Errorf("unknown dispatcher %q", kind)
	}
}

// MockDispatcher stands in for the management interface. It logs the request
// and always reports a PENDING reversal whose ID is derived from the
// transaction ID and the current UTC time.
type MockDispatcher struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewMockDispatcher returns a MockDispatcher using the wall clock.
func NewMockDispatcher(logger *slog.Logger) *MockDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockDispatcher{logger: logger, now: time.Now}
}

// Initiate implements Dispatcher.
func (d *MockDispatcher) Initiate(_ context.Context, txnID, reason string) (*models.ReversalResult, error) {
	now := d.now().UTC()
	d.logger.Info("initiating reversal via JConsole",
		"txn_id", txnID,
		"reason", reason,
		"initiated_by", "web_interface",
		"timestamp", now.Format(time.RFC3339),
	)
	return &models.ReversalResult{
		Success:    true,
		ReversalID: fmt.Sprintf("REV_%s_%s", txnID, now.Format("20060102150405")),
		Status:     models.StatusPending,
		Message:    "Reversal initiated successfully via JConsole",
	}, nil
}

// JolokiaDispatcher invokes the reversal MBean operation through a Jolokia
// agent, which exposes JMX over HTTP/JSON.
type JolokiaDispatcher struct {
	cfg    JMXConfig
	client *http.Client
	logger *slog.Logger
}

// NewJolokiaDispatcher returns a dispatcher for the agent described by cfg.
// A nil client means a client with a 10 second timeout.
func NewJolokiaDispatcher(cfg JMXConfig, client *http.Client, logger *slog.Logger) *JolokiaDispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Operation == "" {
		cfg.Operation = DefaultOperation
	}
	return &JolokiaDispatcher{cfg: cfg, client: client, logger: logger}
}

// URL returns the agent endpoint.
func (d *JolokiaDispatcher) URL() string {
	return fmt.Sprintf("http://%s:%d/jolokia/", d.cfg.Host, d.cfg.Port)
}

type jolokiaRequest struct {
	Type      string   `json:"type"`
	MBean     string   `json:"mbean"`
	Operation string   `json:"operation"`
	Arguments []string `json:"arguments"`
}

type jolokiaResponse struct {
	Status int             `json:"status"`
	Value  json.RawMessage `json:"value"`
	Error  string          `json:"error"`
}

// reversalValue is the shape the reversal operation returns. A plain string
// value is taken as the reversal ID.
type reversalValue struct {
	ReversalID string `json:"reversalId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// Initiate implements Dispatcher.
func (d *JolokiaDispatcher) Initiate(ctx context.Context, txnID, reason string) (*models.ReversalResult, error) {
	body, err := json.Marshal(jolokiaRequest{
		Type:      "exec",
		MBean:     d.cfg.MBean,
		Operation: d.cfg.Operation,
		Arguments: []string{txnID, reason},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	d.logger.Info("initiating reversal via Jolokia", "txn_id", txnID, "mbean", d.cfg.MBean, "url", d.URL())
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: agent returned HTTP %d", ErrDispatch, resp.StatusCode)
	}

	var jr jolokiaResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrDispatch, err)
	}
	if jr.Status != http.StatusOK {
		return nil, fmt.Errorf("%w: %s (status %d)", ErrDispatch, jr.Error, jr.Status)
	}

	var val reversalValue
	if err := json.Unmarshal(jr.Value, &val); err != nil {
		var id string
		if err := json.Unmarshal(jr.Value, &id); err != nil {
			return nil, fmt.Errorf("%w: unexpected value %s", ErrDispatch, string(jr.Value))
		}
		val.ReversalID = id
	}
	if val.ReversalID == "" {
		return nil, fmt.Errorf("%w: no reversal id in response", ErrDispatch)
	}
	if val.Status == "" {
		val.Status = models.StatusPending
	}
	if val.Message == "" {
		val.Message = "Reversal initiated successfully via JMX"
	}

	return &models.ReversalResult{
		Success:    true,
		ReversalID: val.ReversalID,
		Status:     val.Status,
		Message:    val.Message,
	}, nil
}
