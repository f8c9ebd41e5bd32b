// Package cnpj validates Brazilian company tax ids and looks them up
// against a public registry API.
package cnpj

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

// Check-digit weights: first sum covers digits 1-12, second covers 1-13.
var (
	weightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	weightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Normalize strips formatting punctuation, returning the bare digit
// string (not necessarily valid).
func Normalize(s string) string {
	out := make([]byte, 0, 14)
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Valid reports whether s is a well-formed CNPJ: 14 digits, not a
// repeated-digit string, and both weighted mod-11 check digits match.
func Valid(s string) bool {
	d := Normalize(s)
	if len(d) != 14 {
		return false
	}

	// All-same-digit strings pass the checksum but are never issued.
	same := true
	for i := 1; i < 14; i++ {
		if d[i] != d[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	if checkDigit(d, weightsFirst) != int(d[12]-'0') {
		return false
	}
	return checkDigit(d, weightsSecond) == int(d[13]-'0')
}

// checkDigit computes one weighted mod-11 check digit over the first
// len(weights) digits of d.
func checkDigit(d string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(d[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

// CompanyInfo is the subset of registry data the panel displays.
type CompanyInfo struct {
	CNPJ      string `json:"cnpj"`
	LegalName string `json:"razao_social"`
	TradeName string `json:"nome_fantasia"`
	City      string `json:"municipio"`
	State     string `json:"uf"`
}

// ClientOption configures the lookup client.
type ClientOption func(*Client)

// WithHTTPTimeout sets the HTTP client timeout for lookups.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithBaseURL overrides the registry endpoint. Used in tests.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// Client looks up company data on the public BrasilAPI registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a registry lookup client.
func NewClient(log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    "https://brasilapi.com.br/api/cnpj/v1",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches company data for a valid CNPJ. Invalid input fails
// fast without a network call; an unknown id maps to ErrNotFound.
func (c *Client) Lookup(ctx context.Context, cnpj string) (*CompanyInfo, error) {
	d := Normalize(cnpj)
	if !Valid(d) {
		return nil, fmt.Errorf("invalid cnpj %q", cnpj)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, d)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cnpj lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cnpj lookup error %d: %s", resp.StatusCode, string(body))
	}

	var info CompanyInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding lookup response: %w", err)
	}

	c.log.Debug("cnpj lookup: %s -> %s", d, info.LegalName)
	return &info, nil
}
