package client

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// restClient is the fasthttp plumbing shared by the REST API clients.
type restClient struct {
	client  *fasthttp.Client
	timeout time.Duration
	headers map[string]string
	logger  *zap.Logger
}

func newRESTClient(timeout time.Duration, logger *zap.Logger) restClient {
	return restClient{
		client:  &fasthttp.Client{},
		timeout: timeout,
		headers: make(map[string]string),
		logger:  logger,
	}
}

// getJSON performs a GET request and decodes a 200 response body into out.
func (c restClient) getJSON(ctx context.Context, requestURL string, out any) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return fmt.Errorf("request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		c.logger.Warn("Failed to unmarshal response", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("failed to unmarshal response from %s: %w", requestURL, err)
	}
	return nil
}
