// Copyright 2025 Calloway Mechanical Services
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package iconx

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/callowaymech/hd-leads/internal/config"
	"github.com/callowaymech/hd-leads/internal/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

var (
	// ErrorAuth is returned when the vendor rejects the API credentials.
	ErrorAuth = errors.New("vendor rejected the API credentials")

	// ErrorTransient is returned on server-side failures and network errors.
	// The whole fetch is retried once before this error surfaces.
	ErrorTransient = errors.New("vendor request failed")

	// ErrorMalformedResponse is returned when the vendor payload cannot be
	// parsed as the expected record shape.
	ErrorMalformedResponse = errors.New("unexpected vendor response shape")
)

const (
	defaultBaseURL  string = "https://api.hs.homedepot.com/iconx/v1"
	defaultPageSize int    = 100

	// Tokens are refreshed this long before the vendor's reported expiry.
	tokenExpiryMargin = 5 * time.Minute

	retryInterval = 2 * time.Second
)

// Client fetches leads from the ICONX API for a single MVendor account.
// It is not safe for concurrent use; a run owns exactly one Client.
type Client struct {
	http        *http.Client
	baseURL     string
	credentials string
	mvendorID   string
	pageSize    int

	token       string
	tokenExpiry time.Time
}

// ClientOpt represents a function that is used to configure an instance of [Client].
type ClientOpt func(c *Client)

// BaseURL is a [ClientOpt] func that overrides the vendor endpoint.
func BaseURL(url string) ClientOpt {
	return func(c *Client) {
		c.baseURL = url
	}
}

// HTTPClient is a [ClientOpt] func that sets the underlying [*http.Client].
func HTTPClient(h *http.Client) ClientOpt {
	return func(c *Client) {
		c.http = h
	}
}

// PageSize is a [ClientOpt] func that sets the number of records requested
// per page (the vendor caps this at 100).
func PageSize(n int) ClientOpt {
	return func(c *Client) {
		c.pageSize = n
	}
}

// New returns a newly instantiated and configured instance of [Client].
func New(apiKey, apiSecret, mvendorID string, opts ...ClientOpt) *Client {
	c := &Client{
		http:        &http.Client{Timeout: 60 * time.Second},
		baseURL:     defaultBaseURL,
		credentials: base64.StdEncoding.EncodeToString([]byte(apiKey + ":" + apiSecret)),
		mvendorID:   mvendorID,
		pageSize:    defaultPageSize,
	}

	for _, optFn := range opts {
		optFn(c)
	}

	return c
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	log.Debug().Msg("fetching vendor access token")

	url := c.baseURL + "/auth/accesstoken?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Basic "+c.credentials)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrorTransient, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrorMalformedResponse, err)
	}

	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrorMalformedResponse)
	}

	expiresIn, err := token.ExpiresIn.Int64()
	if err != nil || expiresIn <= 0 {
		expiresIn = 1800
	}

	c.token = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryMargin)

	return c.token, nil
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrorAuth, code)
	case code >= 500:
		return fmt.Errorf("%w (status %d)", ErrorTransient, code)
	default:
		return fmt.Errorf("%w: status %d", ErrorMalformedResponse, code)
	}
}

// searchspec builds the vendor's bracketed filter expression. The trailing
// space inside the status bracket matches the vendor's field name exactly.
func (c *Client) searchspec(window config.Window, statuses []models.Status) string {
	start := window.Start.Format(models.TimeLayout)

	if len(statuses) == 1 {
		return fmt.Sprintf(
			"([SFI MVendor #] = '%s' AND [Created] >= '%s' AND [SFI Workflow Only Status ] = '%s')",
			c.mvendorID, start, statuses[0],
		)
	}

	return fmt.Sprintf("([SFI MVendor #] = '%s' AND [Created] >= '%s')", c.mvendorID, start)
}

// FetchLeads fetches every raw lead record matching the window and status
// filter, following the vendor's pagination until the last page. Transient
// failures cause the whole fetch to be retried exactly once; there is no
// partial-page retry. A multi-status filter is not expressible in a
// searchspec, so in that case all statuses are fetched and filtering is
// left to the normalizer.
func (c *Client) FetchLeads(
	ctx context.Context,
	window config.Window,
	statuses []models.Status,
) ([]Record, error) {
	spec := c.searchspec(window, statuses)

	var records []Record
	fetch := func() error {
		recs, err := c.fetchAllPages(ctx, spec)
		if err != nil {
			if errors.Is(err, ErrorTransient) {
				log.Warn().Err(err).Msg("transient vendor failure, retrying fetch")
				return err
			}

			return backoff.Permanent(err)
		}

		records = recs

		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), 1)
	if err := backoff.Retry(fetch, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	log.Debug().Int("num", len(records)).Msg("fetched raw lead records")

	return records, nil
}

func (c *Client) fetchAllPages(ctx context.Context, spec string) ([]Record, error) {
	var all []Record
	for start := 0; ; start += c.pageSize {
		page, last, err := c.fetchPage(ctx, spec, start)
		if err != nil {
			return nil, err
		}

		if len(page) == 0 {
			break
		}

		all = append(all, page...)

		log.Debug().Int("start", start).Int("num", len(page)).Msg("fetched lead page")

		if last || len(page) < c.pageSize {
			break
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, spec string, startRow int) ([]Record, bool, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, false, err
	}

	payload := lookupRequest{
		Input: lookupInput{
			PageSize:    strconv.Itoa(c.pageSize),
			StartRowNum: strconv.Itoa(startRow),
			Leads: lookupList{
				Headers: []lookupHeader{{Searchspec: spec}},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, false, err
	}

	url := c.baseURL + "/leads/lookup"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("appToken", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrorTransient, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, false, fmt.Errorf("lead lookup: %w", err)
	}

	var lookup lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrorMalformedResponse, err)
	}

	output := lookup.Output

	return output.Leads.Records, output.LastPage == "true", nil
}
