package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/username/finboard/backend/src/config"
	"github.com/username/finboard/backend/src/logger"
	"golang.org/x/net/publicsuffix"
)

const (
	announcementListPath   = "/api/smd"
	announcementDetailPath = "/api/getAnnouncementById"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// announcementServiceImpl talks to the Colombo Stock Exchange API on behalf
// of the browser. The exchange sets session cookies on first contact, so
// the client carries a cookie jar.
type announcementServiceImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewAnnouncementService() AnnouncementService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &announcementServiceImpl{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: config.Cfg.CSEHTTPTimeout,
		},
		baseURL: strings.TrimRight(config.Cfg.CSEBaseURL, "/"),
	}
}

// CompanyAnnouncements fetches the announcement feed for a date range and
// returns the upstream JSON body untouched.
func (s *announcementServiceImpl) CompanyAnnouncements(ctx context.Context, fromDate, toDate string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"fromDate": fromDate,
		"toDate":   toDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode announcement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+announcementListPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build announcement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)

	return s.do(req)
}

// AnnouncementDetails fetches one announcement by ID. The upstream endpoint
// expects a form-encoded body.
func (s *announcementServiceImpl) AnnouncementDetails(ctx context.Context, announcementID string) ([]byte, error) {
	if announcementID == "" {
		return nil, fmt.Errorf("%w: announcement id is required", ErrInvalidInput)
	}

	form := url.Values{"announcementId": {announcementID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+announcementDetailPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build detail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", browserUserAgent)

	return s.do(req)
}

func (s *announcementServiceImpl) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.L.Warn("Exchange returned non-OK status", "status", resp.StatusCode, "url", req.URL.Path)
		return nil, fmt.Errorf("exchange returned status %d", resp.StatusCode)
	}
	return body, nil
}
