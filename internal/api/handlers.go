package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"translingo/internal/detect"
	"translingo/internal/lang"
	"translingo/internal/models"
	"translingo/internal/provider"
	"translingo/internal/storage"
	"translingo/internal/worker"
)

const maxHistoryLimit = 100

// Translator resolves a translation across the provider chain.
type Translator interface {
	Resolve(ctx context.Context, text, source, target string) (*provider.Result, error)
}

// LanguageDetector guesses a language locally and never fails.
type LanguageDetector interface {
	Detect(text string) string
}

// RemoteDetector asks an external service for the language of a text.
type RemoteDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// StatusReporter lists the configured providers for the health endpoint.
type StatusReporter interface {
	Statuses() []provider.Status
}

// JobDispatcher runs fn on a bounded worker pool, keyed by caller.
type JobDispatcher interface {
	Submit(ctx context.Context, key string, fn func(context.Context)) error
}

// Deps are the collaborators of a Handler. Translator and Store are required.
type Deps struct {
	Translator   Translator
	Store        storage.Store
	Detector     LanguageDetector
	Remote       RemoteDetector
	Providers    StatusReporter
	Dispatcher   JobDispatcher
	Logger       *logrus.Logger
	HistoryLimit int
}

// Handler wires HTTP routes to the resolver and the translation store.
type Handler struct {
	translator   Translator
	store        storage.Store
	detector     LanguageDetector
	remote       RemoteDetector
	providers    StatusReporter
	dispatcher   JobDispatcher
	logger       *logrus.Logger
	historyLimit int
}

// NewHandler constructs a Handler instance.
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		translator:   deps.Translator,
		store:        deps.Store,
		detector:     deps.Detector,
		remote:       deps.Remote,
		providers:    deps.Providers,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		historyLimit: deps.HistoryLimit,
	}
	if h.detector == nil {
		h.detector = detect.Heuristic{}
	}
	if h.logger == nil {
		h.logger = logrus.New()
	}
	if h.historyLimit <= 0 {
		h.historyLimit = storage.DefaultRecentLimit
	}
	return h
}

// NewRouter builds the gin engine with recovery, request logging, the API
// routes and the metrics endpoint.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.logger))
	h.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)
	api := router.Group("/api")
	api.POST("/translate", h.translate)
	api.POST("/detect-language", h.detectLanguage)
	api.GET("/translations", h.listTranslations)
	api.GET("/languages", h.listLanguages)
}

type translateRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// bindJSON decodes the body into v. An empty body leaves v zero so that the
// field checks report what is missing.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) translate(c *gin.Context) {
	var req translateRequest
	if !bindJSON(c, &req) {
		return
	}
	source := lang.NormalizeSource(req.From)
	target := lang.Normalize(req.To)
	if strings.TrimSpace(req.Text) == "" || target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if target == models.AutoLanguage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target language cannot be auto"})
		return
	}

	log := requestLog(c, h.logger).WithFields(logrus.Fields{
		"source_lang": source,
		"target_lang": target,
	})
	ctx := c.Request.Context()
	var (
		result     *provider.Result
		resolveErr error
	)
	err := h.submit(c, func(ctx context.Context) {
		result, resolveErr = h.translator.Resolve(ctx, req.Text, source, target)
	})
	if errors.Is(err, worker.ErrDispatcherBusy) {
		log.Warn("Translation queue full")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "server is busy, please retry"})
		return
	}
	if err == nil {
		err = resolveErr
	}
	if err != nil {
		log.WithError(err).Error("Translation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Translation failed"})
		return
	}

	rec, err := h.store.Create(ctx, models.NewTranslation{
		SourceText:     req.Text,
		TranslatedText: result.Text,
		SourceLanguage: source,
		TargetLanguage: target,
		Provider:       result.Provider,
	})
	if err != nil {
		log.WithError(err).Error("Failed to save translation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save translation"})
		return
	}
	log.WithFields(logrus.Fields{
		"translation_id": rec.ID,
		"provider":       rec.Provider,
	}).Info("Translation stored")

	c.JSON(http.StatusOK, translateResponse{
		TranslatedText: rec.TranslatedText,
		SourceLanguage: rec.SourceLanguage,
		TargetLanguage: rec.TargetLanguage,
	})
}

// submit runs fn on the dispatcher when one is configured, keyed by client IP.
func (h *Handler) submit(c *gin.Context, fn func(context.Context)) error {
	if h.dispatcher == nil {
		fn(c.Request.Context())
		return nil
	}
	return h.dispatcher.Submit(c.Request.Context(), c.ClientIP(), fn)
}

type detectRequest struct {
	Text string `json:"text"`
}

func (h *Handler) detectLanguage(c *gin.Context) {
	var req detectRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": h.detect(c, req.Text)})
}

// detect prefers the remote detector when one is configured and falls back to
// the local heuristic on any error.
func (h *Handler) detect(c *gin.Context, text string) string {
	if h.remote != nil {
		code, err := h.remote.DetectLanguage(c.Request.Context(), text)
		if err == nil && code != "" {
			return lang.Normalize(code)
		}
		requestLog(c, h.logger).WithError(err).Warn("Remote language detection failed, using heuristic")
	}
	return h.detector.Detect(text)
}

func (h *Handler) listTranslations(c *gin.Context) {
	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if n > 0 {
			limit = n
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.store.Recent(c.Request.Context(), limit)
	if err != nil {
		requestLog(c, h.logger).WithError(err).Error("Failed to load translations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load translations"})
		return
	}
	if records == nil {
		records = []*models.Translation{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) listLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, lang.Supported())
}

func (h *Handler) health(c *gin.Context) {
	statuses := []provider.Status{}
	if h.providers != nil {
		statuses = h.providers.Statuses()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"providers": statuses,
	})
}
