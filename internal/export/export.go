// Package export renders orders to PDF and packages them for download.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/document"
	"github.com/maruko-pickup/api/internal/jpfmt"
	"github.com/maruko-pickup/api/internal/metrics"
	"github.com/maruko-pickup/api/internal/render"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents rendered at once.
const DefaultConcurrency = 3

var (
	ErrNoIDs         = errors.New("at least one order id is required")
	ErrNoOrdersFound = errors.New("no orders found")
	ErrRenderFailed  = errors.New("render failed")
)

// Store defines the DB methods the pipeline reads.
// Satisfied by *database.Queries.
type Store interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Order, error)
	ListOrderItemsByOrderIDs(ctx context.Context, orderIds []uuid.UUID) ([]database.OrderItem, error)
}

// File is one rendered document.
type File struct {
	Name        string
	OrderID     uuid.UUID
	OrderNumber string
	Data        []byte
}

// Archive is the result of a bulk export.
type Archive struct {
	Data   []byte
	Files  []string
	Chunks []int
}

// Pipeline renders order sheets with a shared browser per run.
type Pipeline struct {
	store       Store
	engine      render.Engine
	concurrency int
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewPipeline creates a Pipeline. concurrency < 1 means DefaultConcurrency.
func NewPipeline(store Store, engine render.Engine, concurrency int, m *metrics.Metrics) *Pipeline {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Pipeline{
		store:       store,
		engine:      engine,
		concurrency: concurrency,
		metrics:     m,
		now:         time.Now,
	}
}

// Export renders every order in ids and returns them as one zip archive.
// Unknown ids are dropped. A failure on any document aborts the run and no
// archive is produced.
func (p *Pipeline) Export(ctx context.Context, ids []uuid.UUID) (*Archive, error) {
	start := time.Now()
	archive, err := p.export(ctx, ids)
	if err != nil {
		p.metrics.ExportFinished(exportResult(err), 0, time.Since(start))
		return nil, err
	}
	p.metrics.ExportFinished("success", len(archive.Files), time.Since(start))
	log.Info().
		Int("documents", len(archive.Files)).
		Ints("chunks", archive.Chunks).
		Dur("elapsed", time.Since(start)).
		Msg("export finished")
	return archive, nil
}

func exportResult(err error) string {
	switch {
	case errors.Is(err, ErrNoIDs), errors.Is(err, ErrNoOrdersFound):
		return "no_orders"
	case errors.Is(err, ErrRenderFailed):
		return "render_failed"
	}
	return "error"
}

func (p *Pipeline) export(ctx context.Context, ids []uuid.UUID) (*Archive, error) {
	// --- Fetch ---
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	orders, err := p.store.ListOrdersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrNoOrdersFound
	}
	found := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		found[i] = o.ID
	}
	items, err := p.store.ListOrderItemsByOrderIDs(ctx, found)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	itemsByOrder := document.GroupItems(items)

	// --- Acquire shared browser ---
	browser, err := p.engine.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire browser: %w", ErrRenderFailed, err)
	}
	defer browser.Close() //nolint:errcheck

	// --- Render chunk by chunk ---
	names := newNameSet()
	files := make([]File, 0, len(orders))
	var chunks []int
	for lo := 0; lo < len(orders); lo += p.concurrency {
		hi := min(lo+p.concurrency, len(orders))
		chunk := orders[lo:hi]

		blobs, err := p.renderChunk(ctx, browser, chunk, itemsByOrder)
		if err != nil {
			return nil, err
		}
		for i, o := range chunk {
			files = append(files, File{
				Name:        names.resolve(baseName(o.CustomerName, o.OrderNumber)),
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				Data:        blobs[i],
			})
		}
		chunks = append(chunks, len(chunk))
	}

	// --- Package ---
	data, err := p.zip(files)
	if err != nil {
		return nil, err
	}
	archive := &Archive{Data: data, Chunks: chunks, Files: make([]string, len(files))}
	for i, f := range files {
		archive.Files[i] = f.Name
	}
	return archive, nil
}

// renderChunk renders every order of chunk concurrently. Results are
// indexed like chunk.
func (p *Pipeline) renderChunk(ctx context.Context, browser render.Browser, chunk []database.Order, items map[uuid.UUID][]database.OrderItem) ([][]byte, error) {
	blobs := make([][]byte, len(chunk))
	g, gctx := errgroup.WithContext(ctx)
	for i, o := range chunk {
		g.Go(func() error {
			data, err := p.renderOne(gctx, browser, o, items[o.ID])
			if err != nil {
				return fmt.Errorf("%w: order %s: %w", ErrRenderFailed, o.OrderNumber, err)
			}
			blobs[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blobs, nil
}

func (p *Pipeline) renderOne(ctx context.Context, browser render.Browser, o database.Order, items []database.OrderItem) ([]byte, error) {
	start := time.Now()
	html, err := document.HTML(document.FromRows(o, items))
	if err != nil {
		return nil, err
	}
	data, err := browser.Render(ctx, html)
	if err != nil {
		return nil, err
	}
	p.metrics.DocumentRendered(time.Since(start))
	return data, nil
}

func (p *Pipeline) zip(files []File) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := p.now().In(jpfmt.JST)
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("zip %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderOrder renders a single order sheet.
func (p *Pipeline) RenderOrder(ctx context.Context, id uuid.UUID) (*File, error) {
	order, err := p.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoOrdersFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := p.store.ListOrderItemsByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	browser, err := p.engine.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire browser: %w", ErrRenderFailed, err)
	}
	defer browser.Close() //nolint:errcheck

	data, err := p.renderOne(ctx, browser, order, items)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s: %w", ErrRenderFailed, order.OrderNumber, err)
	}
	return &File{
		Name:        newNameSet().resolve(baseName(order.CustomerName, order.OrderNumber)),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Data:        data,
	}, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
