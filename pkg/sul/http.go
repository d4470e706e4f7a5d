/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: http.go
Description: HTTP system under learning. Each input symbol maps to a request
against the target API; a query is one session identified by a fresh
X-Session-ID header. The output of a step is the response status code, plus
the trimmed text of a CSS selector when one is configured.
*/

package sul

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SessionHeader carries the per-query session identifier
const SessionHeader = "X-Session-ID"

// HTTPSUL learns a web API through abstract endpoint symbols
type HTTPSUL struct {
	target  interfaces.HTTPTarget
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
	session string
}

// NewHTTPSUL creates an HTTP system for target
func NewHTTPSUL(target interfaces.HTTPTarget, logger *logrus.Logger) (*HTTPSUL, error) {
	if target.BaseURL == "" {
		return nil, fmt.Errorf("http target has no base url")
	}
	if len(target.Symbols) == 0 {
		return nil, fmt.Errorf("http target has no symbols")
	}
	if target.Timeout <= 0 {
		target.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if target.RateLimit > 0 {
		burst := target.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(target.RateLimit), burst)
	}

	return &HTTPSUL{
		target: target,
		client: &http.Client{
			Timeout: target.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Session returns the identifier of the running query
func (h *HTTPSUL) Session() string { return h.session }

// Pre opens a new session and calls the reset endpoint if any
func (h *HTTPSUL) Pre(ctx context.Context) error {
	h.session = uuid.New().String()
	if h.target.Reset == nil {
		return nil
	}
	status, _, err := h.do(ctx, *h.target.Reset)
	if err != nil {
		return fmt.Errorf("reset request failed: %w", err)
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("reset request returned %d", status)
	}
	return nil
}

// Step sends the request mapped to input
func (h *HTTPSUL) Step(ctx context.Context, input string) (string, error) {
	ep, ok := h.target.Symbols[input]
	if !ok {
		return "", fmt.Errorf("no endpoint for symbol %q", input)
	}
	status, body, err := h.do(ctx, ep)
	if err != nil {
		return "", fmt.Errorf("request for %q failed: %w", input, err)
	}
	return h.abstract(status, body)
}

// Post ends the session
func (h *HTTPSUL) Post(context.Context) error {
	h.session = ""
	return nil
}

func (h *HTTPSUL) do(ctx context.Context, ep interfaces.Endpoint) (int, []byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	method := string(ep.Method)
	if method == "" {
		method = string(interfaces.HTTPMethodGET)
	}
	var body io.Reader
	if ep.Body != "" {
		body = strings.NewReader(ep.Body)
	}
	url := strings.TrimRight(h.target.BaseURL, "/") + "/" + strings.TrimLeft(ep.Path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(SessionHeader, h.session)

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	h.logger.WithFields(logrus.Fields{
		"method":  method,
		"url":     url,
		"status":  resp.StatusCode,
		"session": h.session,
	}).Debug("Target request")
	return resp.StatusCode, data, nil
}

func (h *HTTPSUL) abstract(status int, body []byte) (string, error) {
	out := strconv.Itoa(status)
	if h.target.Selector == "" {
		return out, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	text := strings.Join(strings.Fields(doc.Find(h.target.Selector).First().Text()), " ")
	if text == "" {
		return out, nil
	}
	return out + ":" + text, nil
}
