package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/maruko-pickup/api/internal/document"
	"github.com/rs/zerolog/log"
)

// ChromeOptions configures the headless Chrome engine.
type ChromeOptions struct {
	// ExecPath is the browser binary. Empty lets chromedp search the usual
	// locations.
	ExecPath string
	// Settle is an extra wait after fonts are ready, for late layout.
	Settle time.Duration
}

// Chrome is an Engine backed by a local headless Chrome.
type Chrome struct {
	opts ChromeOptions
}

// NewChrome creates a Chrome engine. No process is started until Acquire.
func NewChrome(opts ChromeOptions) *Chrome {
	return &Chrome{opts: opts}
}

// Acquire starts a browser process bound to ctx.
func (c *Chrome) Acquire(ctx context.Context) (Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("font-render-hinting", "none"),
	)
	if c.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// The first Run on a fresh context launches the process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	log.Debug().Msg("headless browser started")

	return &chromeBrowser{
		ctx:    browserCtx,
		settle: c.opts.Settle,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

type chromeBrowser struct {
	ctx    context.Context
	settle time.Duration

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

// Render opens a new tab, loads html into it, waits for fonts and prints
// an A4 PDF. The tab is closed before Render returns.
func (b *chromeBrowser) Render(ctx context.Context, html string) ([]byte, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var pdf []byte
	var fontsReady bool
	tasks := chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
	}
	if b.settle > 0 {
		tasks = append(tasks, chromedp.Sleep(b.settle))
	}
	tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(document.PaperWidthInches).
			WithPaperHeight(document.PaperHeightInches).
			WithMarginTop(document.MarginInches).
			WithMarginBottom(document.MarginInches).
			WithMarginLeft(document.MarginInches).
			WithMarginRight(document.MarginInches).
			Do(ctx)
		return err
	}))

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

// Close stops the browser process. It is safe to call more than once.
func (b *chromeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.cancel()
	log.Debug().Msg("headless browser stopped")
	return nil
}
