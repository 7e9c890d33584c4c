// Package main serves gift analysis from AWS Lambda behind a function URL.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/analysis"
	"github.com/jonathan/favor-advisor/internal/catalog"
	"github.com/jonathan/favor-advisor/internal/collation"
	"github.com/jonathan/favor-advisor/internal/config"
	"github.com/jonathan/favor-advisor/internal/fetch"
	"github.com/jonathan/favor-advisor/internal/observability"
	"github.com/jonathan/favor-advisor/internal/types"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// handler answers function URL requests. The catalog is loaded on first use
// and kept for the life of the execution environment.
type handler struct {
	load       func(ctx context.Context) (*catalog.Catalog, error)
	exclusions analysis.ExclusionSet
	collator   collation.Comparer
	logger     *zap.Logger

	mu      sync.Mutex
	catalog *catalog.Catalog
}

// getCatalog returns the cached catalog, loading it if needed. Failures are not cached.
func (h *handler) getCatalog(ctx context.Context) (*catalog.Catalog, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.catalog != nil {
		return h.catalog, nil
	}
	cat, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	h.catalog = cat
	return cat, nil
}

func (h *handler) handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	method := event.RequestContext.HTTP.Method
	path := event.RawPath
	if path == "" {
		path = "/"
	}

	switch {
	case method == http.MethodGet && path == "/health":
		return jsonResp(http.StatusOK, map[string]string{"status": "ok"})
	case method == http.MethodGet && path == "/characters":
		cat, err := h.getCatalog(ctx)
		if err != nil {
			return h.internalError("failed to load catalog", err)
		}
		return jsonResp(http.StatusOK, cat.Characters())
	case method == http.MethodPost && (path == "/" || path == "/analyze"):
		return h.analyze(ctx, event)
	case path == "/" || path == "/analyze" || path == "/characters" || path == "/health":
		return errResp(http.StatusMethodNotAllowed, "method not allowed")
	}
	return errResp(http.StatusNotFound, "not found: "+path)
}

func (h *handler) analyze(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(http.StatusBadRequest, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req types.AnalyzeRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(http.StatusBadRequest, "invalid JSON: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return errResp(http.StatusBadRequest, "character_ids must be a non-empty list of IDs")
	}

	cat, err := h.getCatalog(ctx)
	if err != nil {
		return h.internalError("failed to load catalog", err)
	}

	selected, unknown := cat.Select(req.CharacterIDs)
	if len(selected) == 0 {
		return errResp(http.StatusNotFound, fmt.Sprintf("unknown characters: %v", unknown))
	}

	result := analysis.Analyze(selected, cat.Gifts(), &analysis.Options{
		JunkExclusions: h.exclusions,
		Collator:       h.collator,
	})
	h.logger.Info("analyzed",
		zap.Int("characters", len(selected)),
		zap.Int("unknown", len(unknown)),
	)
	return jsonResp(http.StatusOK, types.AnalyzeResponse{Result: result, UnknownCharacters: unknown})
}

func (h *handler) internalError(msg string, err error) (events.LambdaFunctionURLResponse, error) {
	h.logger.Error(msg, zap.Error(err))
	return errResp(http.StatusInternalServerError, msg)
}

func jsonResp(code int, v any) (events.LambdaFunctionURLResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return errResp(http.StatusInternalServerError, "failed to encode response")
	}
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

// newHandler builds a handler from FAVOR_CONFIG (optional config file path).
func newHandler(logger *zap.Logger) (*handler, error) {
	cfg := &config.Config{}
	if path := os.Getenv("FAVOR_CONFIG"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	collator, err := collation.New(merged.Locale)
	if err != nil {
		return nil, err
	}

	names := analysis.DefaultJunkExclusions()
	switch {
	case merged.JunkExclusionsFile != "":
		names, err = config.LoadExclusionsFile(merged.JunkExclusionsFile)
		if err != nil {
			return nil, err
		}
	case merged.JunkExclusions != nil:
		names = merged.JunkExclusions
	}

	load := func(ctx context.Context) (*catalog.Catalog, error) {
		if merged.UsesLocalCatalog() {
			return catalog.Load(merged.StudentsPath, merged.ItemsPath, collator)
		}
		return catalog.Fetch(ctx, fetch.NewClient(fetch.DefaultOptions()), merged.CatalogBaseURL, collator)
	}

	return &handler{
		load:       load,
		exclusions: analysis.NewExclusionSet(names...),
		collator:   collator,
		logger:     logger,
	}, nil
}

func main() {
	logger, err := observability.NewLogger(os.Getenv("FAVOR_VERBOSE") != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	h, err := newHandler(logger)
	if err != nil {
		logger.Fatal("failed to configure handler", zap.Error(err))
	}
	lambda.Start(h.handle)
}
