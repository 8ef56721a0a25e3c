// Package scoringapi is a client for the external AI candidate scoring endpoint.
package scoringapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/logger"
)

const (
	evaluatePath = "/evaluate"
	userAgent    = "seeg/onehcm"
	// DefaultTimeout bounds a single evaluation call. There is no retry.
	DefaultTimeout = 60 * time.Second

	defaultMaxLogLength = 200
)

// Client calls the scoring endpoint.
type Client struct {
	logger       *zap.Logger
	apiKey       string
	HTTPClient   *http.Client
	UserAgent    string
	APIURL       string
	Timeout      time.Duration
	MaxLogLength int
}

// New creates a client for the endpoint rooted at apiURL. apiKey may be empty.
func New(apiURL, apiKey string, l *zap.Logger) *Client {
	return &Client{
		logger:       logger.WithFields(l, zap.String("component", "scoringapi")),
		apiKey:       strings.TrimSpace(apiKey),
		APIURL:       strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		HTTPClient:   &http.Client{},
		UserAgent:    userAgent,
		Timeout:      DefaultTimeout,
		MaxLogLength: defaultMaxLogLength,
	}
}
