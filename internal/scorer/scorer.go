package scorer

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/gate"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultURL = "http://127.0.0.1:8000/match-resume/"
	userAgent  = "spigell/resume-matcher"
	// Scoring parses the whole PDF on the service side, so it is much slower than a plain API call.
	defaultTimeout = 60 * time.Second
	// How much of a response body goes to debug logs.
	defaultPreviewLength = 200
)

// ErrBusy is returned when a submission is already outstanding. No request is sent.
var ErrBusy = errors.New("a submission is already in progress")

type Client struct {
	logger         *zap.Logger
	HTTPClient     *http.Client
	UserAgent      string
	APIURL         string
	SkillsEncoding SkillsEncoding
	PreviewLength  int

	inflight *semaphore.Weighted
	pending  atomic.Bool
}

func New(logger *zap.Logger, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:         logger,
		UserAgent:      userAgent,
		SkillsEncoding: EncodingString,
		PreviewLength:  defaultPreviewLength,
		inflight:       semaphore.NewWeighted(1),
	}
}

// Endpoint is the URL submissions are posted to.
func (c *Client) Endpoint() string {
	return c.APIURL
}

// Busy reports whether a submission is outstanding.
func (c *Client) Busy() bool {
	return c.pending.Load()
}

// Submit sends the request to the scoring service and normalizes the answer.
// Exactly one HTTP request is made per call and it is never retried. Failures
// are returned as *SubmissionError, a concurrent call gets ErrBusy.
func (c *Client) Submit(ctx context.Context, req *gate.Request) (*analysis.Result, error) {
	if req == nil {
		return nil, errors.New("submission request is required")
	}

	if !c.inflight.TryAcquire(1) {
		c.logger.Debug("rejecting submission", zap.String("reason", ErrBusy.Error()))
		return nil, ErrBusy
	}
	c.pending.Store(true)
	defer func() {
		c.pending.Store(false)
		c.inflight.Release(1)
	}()

	raw, err := c.postMultipart(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := analysis.Normalize(raw)
	if err != nil {
		return nil, &SubmissionError{Kind: ServiceFailure, Cause: err}
	}

	c.logger.Debug("got analysis result",
		zap.Int("score", result.Score),
		zap.String("band", string(result.Band)),
	)

	return result, nil
}
