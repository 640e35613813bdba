package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Logical page size in CSS pixels and in inches (US Letter).
const (
	PageWidthPx    = 816
	PageHeightPx   = 1056
	pageWidthIn    = 8.5
	pageHeightIn   = 11
	exportScale    = 3
	exportTimeout  = 60 * time.Second
	exportSelector = "#resume-page"
)

// ChromeExporter rasterizes resume documents with headless Chrome. Every
// export starts a fresh browser so a crashed tab never leaks into the next
// one.
type ChromeExporter struct {
	execPath string
}

// NewChromeExporter creates the exporter. An empty execPath lets chromedp
// find Chrome on the PATH.
func NewChromeExporter(execPath string) *ChromeExporter {
	return &ChromeExporter{execPath: execPath}
}

func (e *ChromeExporter) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(PageWidthPx, PageHeightPx),
	)
	if e.execPath != "" {
		opts = append(opts, chromedp.ExecPath(e.execPath))
	}
	return opts
}

// ExportImage captures the page element at three times device scale.
func (e *ChromeExporter) ExportImage(ctx context.Context, html string) ([]byte, error) {
	var buf []byte
	err := e.run(ctx, html,
		chromedp.EmulateViewport(PageWidthPx, PageHeightPx, chromedp.EmulateScale(exportScale)),
		chromedp.WaitVisible(exportSelector, chromedp.ByQuery),
		chromedp.Screenshot(exportSelector, &buf, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("capture image: %w", err)
	}
	return buf, nil
}

// ExportDocument prints the page as a single letter-sized PDF page with no
// margins.
func (e *ChromeExporter) ExportDocument(ctx context.Context, html string) ([]byte, error) {
	var buf []byte
	err := e.run(ctx, html,
		chromedp.WaitReady(exportSelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(pageWidthIn).
				WithPaperHeight(pageHeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPageRanges("1").
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return buf, nil
}

// run loads html from a temporary file, then runs actions against it.
func (e *ChromeExporter) run(ctx context.Context, html string, actions ...chromedp.Action) error {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, e.allocatorOptions()...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	tctx, cancelTimeout := context.WithTimeout(cctx, exportTimeout)
	defer cancelTimeout()

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return err
	}

	tasks := chromedp.Tasks{chromedp.Navigate("file://" + htmlPath)}
	for _, a := range actions {
		tasks = append(tasks, a)
	}
	return chromedp.Run(tctx, tasks)
}
