package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"translingo/internal/lang"
	"translingo/internal/models"
)

// DefaultLibreTranslateURL is the public LibreTranslate instance.
const DefaultLibreTranslateURL = "https://libretranslate.com"

// LibreTranslate calls a LibreTranslate instance. The API key is optional
// and only required by instances that enforce one.
type LibreTranslate struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

type libreDetectRequest struct {
	Q      string `json:"q"`
	APIKey string `json:"api_key,omitempty"`
}

type libreDetection struct {
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

func NewLibreTranslate(baseURL, apiKey string, timeout time.Duration) *LibreTranslate {
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}
	return &LibreTranslate{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    newHTTPClient(baseURL, timeout),
	}
}

func (l *LibreTranslate) Name() string { return "libretranslate" }

func (l *LibreTranslate) Available() bool { return l.baseURL != "" }

func (l *LibreTranslate) SupportsAutoSource() bool { return true }

func (l *LibreTranslate) Translate(ctx context.Context, req Request) (string, error) {
	source := req.Source
	if source == "" {
		source = models.AutoLanguage
	}
	rr, err := l.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(libreTranslateRequest{
			Q:      req.Text,
			Source: libreCode(source),
			Target: libreCode(req.Target),
			Format: "text",
			APIKey: l.apiKey,
		}).
		Post("/translate")
	if err != nil {
		return "", fmt.Errorf("libretranslate request: %w", err)
	}

	var resp libreTranslateResponse
	if err := decodeResponse("libretranslate", rr, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("libretranslate: %s", resp.Error)
	}
	if resp.TranslatedText == "" {
		return "", ErrMissingTranslation
	}
	return resp.TranslatedText, nil
}

// DetectLanguage asks the instance's /detect endpoint and returns the most
// confident language code.
func (l *LibreTranslate) DetectLanguage(ctx context.Context, text string) (string, error) {
	if !l.Available() {
		return "", ErrNotConfigured
	}
	rr, err := l.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(libreDetectRequest{Q: text, APIKey: l.apiKey}).
		Post("/detect")
	if err != nil {
		return "", fmt.Errorf("libretranslate detect request: %w", err)
	}

	var detections []libreDetection
	if err := decodeResponse("libretranslate detect", rr, &detections); err != nil {
		return "", err
	}
	var best *libreDetection
	for i := range detections {
		if best == nil || detections[i].Confidence > best.Confidence {
			best = &detections[i]
		}
	}
	if best == nil || strings.TrimSpace(best.Language) == "" {
		return "", errors.New("libretranslate detect: no language returned")
	}
	return strings.ToLower(best.Language), nil
}

// libreCode maps Traditional Chinese to LibreTranslate's "zt".
func libreCode(code string) string {
	if code == lang.TraditionalChinese {
		return "zt"
	}
	return code
}
