package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainrisk "blue-collar-portal/internal/domain/risk"

	"github.com/sirupsen/logrus"
)

type httpAssessor struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewHTTPAssessor calls an external scoring service at POST {baseURL}/assess.
// It returns nil when baseURL is empty.
func NewHTTPAssessor(baseURL string, timeout time.Duration, logger *logrus.Logger) domainrisk.Assessor {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &httpAssessor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *httpAssessor) Assess(ctx context.Context, content domainrisk.Content) (domainrisk.Assessment, error) {
	if c == nil || c.client == nil {
		return domainrisk.Assessment{}, errors.New("nil risk client")
	}
	endpoint := c.baseURL + "/assess"

	b, err := json.Marshal(content)
	if err != nil {
		return domainrisk.Assessment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return domainrisk.Assessment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domainrisk.Assessment{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		bodyStr := strings.TrimSpace(string(rb))
		c.logger.WithFields(logrus.Fields{"endpoint": endpoint, "status": resp.StatusCode, "body": bodyStr}).Warn("risk assessment failed")
		return domainrisk.Assessment{}, fmt.Errorf("risk assessment failed: status=%d body=%s", resp.StatusCode, bodyStr)
	}

	var out domainrisk.Assessment
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return domainrisk.Assessment{}, fmt.Errorf("%w: %v", domainrisk.ErrInvalidAssessment, err)
	}
	return out.Normalize(), nil
}

var _ domainrisk.Assessor = (*httpAssessor)(nil)
