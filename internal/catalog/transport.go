// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
	"github.com/taibuivan/yomira-harvester/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-harvester/internal/platform/metrics"
)

// maxErrorBody bounds how much of a failed response is kept for the error message.
const maxErrorBody = 512

// Options configures the shared HTTP transport of [Client] and [Authenticator].
type Options struct {
	BaseURL  string
	Category string
	Sort     string

	// APIKey and APISecret enable request signing when both are set.
	APIKey    string
	APISecret string

	ProxyURL string
	Timeout  time.Duration

	// RPS and Burst pace outgoing requests. RPS <= 0 disables pacing.
	RPS   float64
	Burst int

	// HTTPClient replaces the default client. Proxy and Timeout are ignored when set.
	HTTPClient *http.Client

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// transport performs single remote calls: pacing, signing, status mapping
// and envelope decoding. It never retries.
type transport struct {
	http    *http.Client
	base    *url.URL
	limiter *rate.Limiter
	signer  *signer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newTransport(options Options) (*transport, error) {
	base, err := url.Parse(options.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("catalog: invalid base URL %q", options.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	client := options.HTTPClient
	if client == nil {
		httpTransport := http.DefaultTransport.(*http.Transport).Clone()
		if options.ProxyURL != "" {
			proxy, err := url.Parse(options.ProxyURL)
			if err != nil {
				return nil, fmt.Errorf("catalog: invalid proxy URL: %w", err)
			}
			httpTransport.Proxy = http.ProxyURL(proxy)
		}
		client = &http.Client{Transport: httpTransport, Timeout: options.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if options.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RPS), max(options.Burst, 1))
	}

	var requestSigner *signer
	if options.APIKey != "" && options.APISecret != "" {
		requestSigner = newSigner(options.APIKey, options.APISecret)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &transport{
		http:    client,
		base:    base,
		limiter: limiter,
		signer:  requestSigner,
		metrics: options.Metrics,
		logger:  logger,
	}, nil
}

// call performs one request and decodes the envelope's data into out.
//
// # Parameters
//   - endpoint: Short label used for logs, metrics and error messages.
//   - path: Path relative to the base URL, without query.
//   - token: Bearer credential; empty for unauthenticated endpoints.
func (t *transport) call(ctx context.Context, endpoint, method, path string, query url.Values, body any, token string, out any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return apperr.Transport(endpoint, err)
	}

	relative := path
	if len(query) > 0 {
		relative += "?" + query.Encode()
	}
	target := t.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperr.Internal(err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return apperr.Transport(endpoint, err)
	}

	t.decorate(request.Header, method, relative, token, body != nil)

	start := time.Now()
	response, err := t.http.Do(request)
	if err != nil {
		t.metrics.ObserveRequest(endpoint, 0, time.Since(start))
		return apperr.Transport(endpoint, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	t.metrics.ObserveRequest(endpoint, response.StatusCode, time.Since(start))
	if err != nil {
		return apperr.Transport(endpoint, err)
	}

	logger := t.logger
	if sweepID := ctxutil.GetSweepID(ctx); sweepID != "" {
		logger = logger.With(slog.String("sweep_id", sweepID))
	}

	logger.Debug("catalog_request",
		slog.String("endpoint", endpoint),
		slog.String("path", relative),
		slog.Int("status", response.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return decode(endpoint, response.StatusCode, raw, out)
}

func (t *transport) decorate(header http.Header, method, relative, token string, hasBody bool) {
	header.Set(constants.HeaderAccept, constants.AcceptPicaComic)
	header.Set(constants.HeaderAppChannel, constants.AppChannel)
	header.Set(constants.HeaderAppVersion, constants.AppVersionName)
	header.Set(constants.HeaderAppPlatform, constants.AppPlatform)
	header.Set(constants.HeaderAppUUID, constants.AppUUID)
	header.Set(constants.HeaderImageQuality, constants.ImageQuality)

	if hasBody {
		header.Set(constants.HeaderContentType, "application/json; charset=UTF-8")
	}
	if token != "" {
		header.Set(constants.HeaderAuthorization, token)
	}
	if t.signer != nil {
		t.signer.sign(header, method, relative)
	}
}

// decode maps the HTTP status and the envelope onto the error taxonomy.
func decode(endpoint string, status int, raw []byte, out any) error {
	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if status == http.StatusUnauthorized || (decodeErr == nil && env.Code == http.StatusUnauthorized) {
		return apperr.Unauthorized(endpoint)
	}

	if status < 200 || status >= 300 {
		return apperr.RemoteStatus(endpoint, status, errorText(env, raw, decodeErr))
	}

	if decodeErr != nil {
		return apperr.Transport(endpoint, fmt.Errorf("decode envelope: %w", decodeErr))
	}

	if env.Code >= 300 {
		return apperr.RemoteStatus(endpoint, env.Code, errorText(env, raw, nil))
	}

	if out == nil {
		return nil
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return apperr.Transport(endpoint, fmt.Errorf("response has no data"))
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperr.Transport(endpoint, fmt.Errorf("decode data: %w", err))
	}

	return nil
}

func errorText(env envelope, raw []byte, decodeErr error) string {
	if decodeErr == nil && env.Message != "" {
		return env.Message
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}
