package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raushan1140/invoice-po-matcher/internal/entity"
)

// ErrShuttingDown is returned when work is submitted after Shutdown.
var ErrShuttingDown = errors.New("extraction pool is shutting down")

// InvoiceParser is the unit of work the pool runs. Implemented by
// parse.Parser.
type InvoiceParser interface {
	ParseInvoice(ctx context.Context, path, explicitType string) (entity.InvoiceRecord, error)
}

type job struct {
	id           uuid.UUID
	path         string
	explicitType string
	reply        chan jobResult
}

type jobResult struct {
	invoice entity.InvoiceRecord
	err     error
}

// ExtractionPool bounds concurrent OCR work. Tesseract is CPU-heavy, so
// uploads queue here instead of each spawning their own process.
type ExtractionPool struct {
	parser  InvoiceParser
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ExtractionPool)

func WithWorkers(n int) Option {
	return func(p *ExtractionPool) {
		if n > 0 {
			p.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(p *ExtractionPool) {
		if n > 0 {
			p.ch = make(chan job, n)
		}
	}
}
func WithTimeout(d time.Duration) Option {
	return func(p *ExtractionPool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewExtractionPool(parser InvoiceParser, logger *slog.Logger, opts ...Option) *ExtractionPool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &ExtractionPool{
		parser:  parser,
		logger:  logger,
		workers: 2,
		timeout: 2 * time.Minute,
		ch:      make(chan job, 64),
	}
	for _, o := range opts {
		o(p)
	}
	p.start()
	return p
}

func (p *ExtractionPool) start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()
				p.logger.Info("extraction worker started", "worker_id", workerID)

				for j := range p.ch {
					ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
					invoice, err := p.parser.ParseInvoice(ctx, j.path, j.explicitType)
					cancel()

					if err != nil {
						p.logger.Error("extraction failed", "worker_id", workerID, "job_id", j.id, "path", j.path, "error", err)
					} else {
						p.logger.Info("extraction complete", "worker_id", workerID, "job_id", j.id, "invoice_number", invoice.InvoiceNumber)
					}
					j.reply <- jobResult{invoice: invoice, err: err}
				}

				p.logger.Info("extraction worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Parse submits a file and blocks until a worker has processed it or ctx is
// done. Upload handlers call this so OCR concurrency stays bounded while the
// request still gets a synchronous answer.
func (p *ExtractionPool) Parse(ctx context.Context, path, explicitType string) (entity.InvoiceRecord, error) {
	j := job{
		id:           uuid.New(),
		path:         path,
		explicitType: explicitType,
		reply:        make(chan jobResult, 1),
	}

	// The lock is held across the send so Shutdown cannot close the
	// channel mid-submit.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return entity.InvoiceRecord{}, ErrShuttingDown
	}
	select {
	case p.ch <- j:
	default:
		p.logger.Warn("extraction queue full, applying backpressure", "job_id", j.id)
		p.ch <- j
	}
	p.mu.Unlock()

	select {
	case res := <-j.reply:
		return res.invoice, res.err
	case <-ctx.Done():
		return entity.InvoiceRecord{}, ctx.Err()
	}
}

// Shutdown stops accepting work and waits for in-flight jobs to finish, or
// until ctx expires.
func (p *ExtractionPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); p.wg.Wait() }()

	select {
	case <-ctx.Done():
		p.logger.Warn("extraction pool shutdown interrupted by context")
	case <-done:
		p.logger.Info("extraction pool drained, shutdown complete")
	}
}
