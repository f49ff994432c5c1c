package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
	"github.com/asmelnik/bookvault/internal/platform/constants"
)

const (
	feedTimeout    = 15 * time.Second
	feedMaxRetries = 3
	feedRPS        = 2
)

// FeedClient pulls a JSON array of book-shaped objects from the configured
// remote source. Transient upstream faults (5xx, 429, transport errors) are
// retried with exponential backoff; anything that still fails surfaces as an
// external-fetch failure so callers can tell "nothing to import" apart from
// "source unreachable".
type FeedClient struct {
	httpClient *http.Client
	feedURL    string
	limiter    *rate.Limiter
	maxRetries int
}

func NewFeedClient(feedURL string) *FeedClient {
	return &FeedClient{
		httpClient: &http.Client{
			Timeout: feedTimeout,
		},
		feedURL:    feedURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second/feedRPS), 1),
		maxRetries: feedMaxRetries,
	}
}

// Fetch downloads and decodes the remote book list.
func (client *FeedClient) Fetch(ctx context.Context) ([]Candidate, error) {
	var lastErr error
	for attempt := 0; attempt <= client.maxRetries; attempt++ {
		if attempt > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperr.ExternalFetchFailed(ctx.Err())
			}
		}

		if err := client.limiter.Wait(ctx); err != nil {
			return nil, apperr.ExternalFetchFailed(err)
		}

		candidates, retryable, err := client.fetchOnce(ctx)
		if err == nil {
			return candidates, nil
		}

		lastErr = err
		if !retryable {
			return nil, apperr.ExternalFetchFailed(err)
		}
	}

	return nil, apperr.ExternalFetchFailed(
		fmt.Errorf("after %d retries: %w", client.maxRetries, lastErr))
}

// fetchOnce performs a single GET against the feed. The second return value
// reports whether the failure is worth retrying.
func (client *FeedClient) fetchOnce(ctx context.Context) ([]Candidate, bool, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.feedURL, nil)
	if err != nil {
		return nil, false, err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", constants.AppName+"/"+constants.AppVersion)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, true, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code: %d", response.StatusCode)
		retryable := response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500
		return nil, retryable, err
	}

	var candidates []Candidate
	if err := json.NewDecoder(response.Body).Decode(&candidates); err != nil {
		return nil, false, fmt.Errorf("malformed feed payload: %w", err)
	}

	return candidates, false, nil
}
