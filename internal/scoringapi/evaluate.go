package scoringapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

// Evaluate posts req to the scoring endpoint. It never returns an error:
// timeouts, transport errors and non-2xx answers become a failed Result.
func (c *Client) Evaluate(ctx context.Context, req Request, thresholds Thresholds) Result {
	body, err := json.Marshal(req)
	if err != nil {
		return failed(FailureEncode, 0, "encode evaluation request: %v", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.APIURL+evaluatePath, bytes.NewReader(body))
	if err != nil {
		return failed(FailureEncode, 0, "build evaluation request: %v", err)
	}
	httpReq.URL.RawQuery = thresholdQuery(thresholds).Encode()
	c.setHeaders(httpReq)

	c.logger.Debug("scoring request",
		zap.String("candidate_id", req.ID),
		zap.String("url", httpReq.URL.String()),
		zap.String("payload_preview", utils.TruncateForLog(string(body), c.MaxLogLength)),
	)

	started := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return c.transportFailure(ctx, callCtx, timeout, err)
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		if callCtx.Err() != nil {
			return c.transportFailure(ctx, callCtx, timeout, err)
		}
		return failed(FailureTransport, resp.StatusCode, "read scoring response: %v", err)
	}

	c.logger.Debug("scoring response",
		zap.String("candidate_id", req.ID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
		zap.String("response_preview", utils.TruncateForLog(string(data), c.MaxLogLength)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(FailureStatus, resp.StatusCode, "bad status: %s: %s", resp.Status, utils.TruncateForLog(string(data), c.MaxLogLength))
	}

	var decoded Response
	if err := json.Unmarshal(data, &decoded); err != nil {
		return failed(FailureDecode, resp.StatusCode, "decode scoring response: %v", err)
	}

	return succeeded(&decoded, resp.StatusCode)
}

func (c *Client) transportFailure(parent, callCtx context.Context, timeout time.Duration, err error) Result {
	switch {
	case parent.Err() != nil:
		return failed(FailureCanceled, 0, "evaluation canceled: %v", parent.Err())
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return failed(FailureTimeout, 0, "scoring endpoint did not answer within %s", timeout)
	default:
		return failed(FailureTransport, 0, "call scoring endpoint: %v", err)
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("User-Agent", c.UserAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
}

func thresholdQuery(t Thresholds) url.Values {
	q := url.Values{}
	q.Set("threshold_pct", strconv.FormatFloat(t.ThresholdPct, 'f', -1, 64))
	q.Set("hold_threshold_pct", strconv.FormatFloat(t.HoldThresholdPct, 'f', -1, 64))
	return q
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}
