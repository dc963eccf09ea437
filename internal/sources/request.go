package sources

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "VacancyBot/3.0"

	maxLoggedBody = 512
)

// Requester performs JSON GET requests against job board APIs.
type Requester struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	// Token is sent as a bearer token when set.
	Token string
}

func NewRequester(logger *zap.Logger, userAgent, token string, timeout time.Duration) *Requester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Requester{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
		Token:     token,
	}
}

// GetJSON makes a GET request and decodes the JSON body into target.
func (r *Requester) GetJSON(ctx context.Context, rawURL string, q url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	r.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	r.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("opening gzip body: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Debug("unexpected response", zap.Int("status", resp.StatusCode),
			zap.String("body", utils.Preview(string(data), maxLoggedBody)))
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		r.logger.Debug("malformed response", zap.String("body", utils.Preview(string(data), maxLoggedBody)))
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func (r *Requester) setHeaders(req *http.Request) {
	if r.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.Token))
	}
	req.Header.Set("User-Agent", r.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
}
