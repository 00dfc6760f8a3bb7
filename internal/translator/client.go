package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carverauto/srql/internal/domain"
)

const defaultTimeout = 30 * time.Second

// HTTPClient talks to the external SRQL translator service over its JSON
// translate endpoint.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a translator client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Translate posts the query to the translator and decodes its Translation.
// Any transport or decode failure is a translation failure; the engine never
// inspects translator internals beyond the documented contract.
func (c *HTTPClient) Translate(ctx context.Context, req Request) (Translation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Translation{}, fmt.Errorf("%w: encode request: %v", domain.ErrTranslationFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return Translation{}, fmt.Errorf("%w: build request: %v", domain.ErrTranslationFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Translation{}, fmt.Errorf("%w: %v", domain.ErrTranslationFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Translation{}, fmt.Errorf("%w: translator returned %d: %s",
			domain.ErrTranslationFailure, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var translation Translation
	if err := json.NewDecoder(resp.Body).Decode(&translation); err != nil {
		return Translation{}, fmt.Errorf("%w: decode response: %v", domain.ErrTranslationFailure, err)
	}

	if strings.TrimSpace(translation.SQL) == "" {
		return Translation{}, fmt.Errorf("%w: translation carries no sql", domain.ErrTranslationFailure)
	}

	return translation, nil
}
