package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"translingo/internal/lang"
	"translingo/internal/models"
)

const (
	deeplFreeURL = "https://api-free.deepl.com"
	deeplProURL  = "https://api.deepl.com"
)

// DeepL calls the DeepL v2 translate API.
type DeepL struct {
	apiKey string
	http   *resty.Client
}

// NewDeepL builds the DeepL adapter. When baseURL is empty the endpoint is
// picked from the key: free-tier keys end in ":fx".
func NewDeepL(baseURL, apiKey string, timeout time.Duration) *DeepL {
	if baseURL == "" {
		baseURL = deeplProURL
		if strings.HasSuffix(apiKey, ":fx") {
			baseURL = deeplFreeURL
		}
	}
	return &DeepL{apiKey: apiKey, http: newHTTPClient(baseURL, timeout)}
}

func (d *DeepL) Name() string { return "deepl" }

func (d *DeepL) Available() bool { return d.apiKey != "" }

func (d *DeepL) SupportsAutoSource() bool { return true }

func (d *DeepL) Translate(ctx context.Context, req Request) (string, error) {
	form := map[string]string{
		"text":        req.Text,
		"target_lang": deeplTargetCode(req.Target),
	}
	if req.Source != "" && req.Source != models.AutoLanguage {
		form["source_lang"] = deeplSourceCode(req.Source)
	}

	rr, err := d.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "DeepL-Auth-Key "+d.apiKey).
		SetFormData(form).
		Post("/v2/translate")
	if err != nil {
		return "", fmt.Errorf("deepl request: %w", err)
	}

	var resp struct {
		Translations []struct {
			DetectedSourceLanguage string `json:"detected_source_language"`
			Text                   string `json:"text"`
		} `json:"translations"`
	}
	if err := decodeResponse("deepl", rr, &resp); err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 || resp.Translations[0].Text == "" {
		return "", ErrMissingTranslation
	}
	return resp.Translations[0].Text, nil
}

// deeplTargetCode maps a base code to DeepL's target code. English and
// Portuguese targets must name a regional variant.
func deeplTargetCode(code string) string {
	switch strings.ToLower(code) {
	case "en":
		return "EN-US"
	case "pt":
		return "PT-PT"
	case lang.TraditionalChinese:
		return "ZH-HANT"
	default:
		return strings.ToUpper(code)
	}
}

// deeplSourceCode drops the variant; DeepL source languages are base codes only.
func deeplSourceCode(code string) string {
	if idx := strings.IndexByte(code, '-'); idx >= 0 {
		code = code[:idx]
	}
	return strings.ToUpper(code)
}
