package rendering

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/types"
)

// ResultsSelector is the element captured by Screenshot.
const ResultsSelector = ".results-grid"

// ScreenshotOptions configures the headless browser capture.
type ScreenshotOptions struct {
	Timeout time.Duration
	Width   int64
	Height  int64
	// Scale is the device pixel ratio of the capture.
	Scale float64
	// Logger receives capture progress at debug level. Nil disables it.
	Logger *zap.Logger
}

// DefaultScreenshotOptions returns a 2x capture of a desktop-sized viewport.
func DefaultScreenshotOptions() *ScreenshotOptions {
	return &ScreenshotOptions{
		Timeout: 30 * time.Second,
		Width:   760,
		Height:  1024,
		Scale:   2,
	}
}

// ExportFileName returns the download name for an export taken at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("gift-analysis-%d.png", t.UnixMilli())
}

// Screenshot renders html in headless Chrome and returns a PNG of the
// results grid. Requires Chrome/Chromium to be installed on the system.
func Screenshot(ctx context.Context, html string, opts *ScreenshotOptions) ([]byte, error) {
	if opts == nil {
		opts = DefaultScreenshotOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("starting headless browser", zap.Int("html_bytes", len(html)))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	dataURL := "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(opts.Width, opts.Height, chromedp.EmulateScale(opts.Scale)),
		chromedp.Navigate(dataURL),
		chromedp.WaitVisible(ResultsSelector, chromedp.ByQuery),
		chromedp.Screenshot(ResultsSelector, &buf, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &Error{
			Stage:   StageCapture,
			Message: "browser capture failed",
			Cause:   err,
		}
	}

	logger.Debug("captured PNG", zap.Int("bytes", len(buf)))
	return buf, nil
}

// Export renders result and captures it as a PNG.
func Export(ctx context.Context, result *types.AnalysisResult, report *ReportOptions, shot *ScreenshotOptions) ([]byte, error) {
	html, err := RenderHTML(ctx, result, report)
	if err != nil {
		return nil, err
	}
	return Screenshot(ctx, html, shot)
}
