package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"translingo/internal/lang"
	"translingo/internal/models"
)

// DefaultMyMemoryURL is the public MyMemory endpoint.
const DefaultMyMemoryURL = "https://api.mymemory.translated.net"

var errExplicitSource = errors.New("mymemory requires an explicit source language")

// MyMemory calls the unauthenticated MyMemory API. It cannot detect the
// source language itself.
type MyMemory struct {
	email string
	http  *resty.Client
}

// NewMyMemory builds the adapter. A contact email raises MyMemory's daily quota.
func NewMyMemory(baseURL, email string, timeout time.Duration) *MyMemory {
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	return &MyMemory{email: email, http: newHTTPClient(baseURL, timeout)}
}

func (m *MyMemory) Name() string { return "mymemory" }

func (m *MyMemory) Available() bool { return true }

func (m *MyMemory) SupportsAutoSource() bool { return false }

func (m *MyMemory) Translate(ctx context.Context, req Request) (string, error) {
	if req.Source == "" || req.Source == models.AutoLanguage {
		return "", errExplicitSource
	}
	params := map[string]string{
		"q":        req.Text,
		"langpair": myMemoryCode(req.Source) + "|" + myMemoryCode(req.Target),
	}
	if m.email != "" {
		params["de"] = m.email
	}

	rr, err := m.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/get")
	if err != nil {
		return "", fmt.Errorf("mymemory request: %w", err)
	}

	var resp struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`

		// Sent as a number on success and sometimes as a string on errors.
		ResponseStatus  json.RawMessage `json:"responseStatus"`
		ResponseDetails string          `json:"responseDetails"`
	}
	if err := decodeResponse("mymemory", rr, &resp); err != nil {
		return "", err
	}
	if status, ok := parseStatus(resp.ResponseStatus); ok && status != 200 {
		return "", fmt.Errorf("mymemory: status %d: %s", status, resp.ResponseDetails)
	}
	if resp.ResponseData.TranslatedText == "" {
		return "", ErrMissingTranslation
	}
	return resp.ResponseData.TranslatedText, nil
}

func parseStatus(raw json.RawMessage) (int, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// myMemoryCode spells Traditional Chinese the way MyMemory expects it.
func myMemoryCode(code string) string {
	if code == lang.TraditionalChinese {
		return "zh-TW"
	}
	return code
}
