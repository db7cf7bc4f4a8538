package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	domrepo "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, o *models.Observation) error
}

// IngestPipeline sits between the market stream and the processor.
// It validates, throttles per ticker, optionally transforms, and buffers
// when the downstream backend is unavailable.
type IngestPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.Observation
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-ticker last accepted time
	// simple format transform hook (optional)
	transform func(*models.Observation) *models.Observation
	// metrics
	bufDepthGauge func(int)
	throttleWarn  func(string)
}

type PipelineOption func(*IngestPipeline)

// WithMaxRPS sets the max observations per second per ticker.
func WithMaxRPS(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform sets a transformation hook to modify observation format.
func WithTransform(fn func(*models.Observation) *models.Observation) PipelineOption {
	return func(p *IngestPipeline) { p.transform = fn }
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   20,   // default throttle per ticker
		bufSize:  1000, // default buffer
		bufCh:    make(chan *models.Observation, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.Observation, p.bufSize)
	}
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	p.throttleWarn = func(ticker string) { p.metrics.RecordError("pipeline_throttle_" + ticker) }
	return p
}

// Start launches background flushing of buffered observations.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case o := <-p.bufCh:
				if o == nil {
					continue
				}
				if err := p.proc.Process(ctx, o); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- o:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards the observation downstream,
// buffering on errors.
func (p *IngestPipeline) Process(ctx context.Context, o *models.Observation) error {
	start := time.Now()
	if err := validateObservation(o); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		o = p.transform(o)
		if err := validateObservation(o); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.allow(o.Ticker, start) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		if p.throttleWarn != nil {
			p.throttleWarn(o.Ticker)
		}
		return nil
	}

	if err := p.proc.Process(ctx, o); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- o:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateObservation(o *models.Observation) error {
	if o == nil {
		return fmt.Errorf("observation nil")
	}
	if o.Ticker == "" {
		return fmt.Errorf("ticker empty")
	}
	if o.Metric == "" {
		return fmt.Errorf("metric empty")
	}
	if o.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	return nil
}

func (p *IngestPipeline) allow(ticker string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	// simple throttle: at most maxRPS per second per ticker
	last := p.lastSeen[ticker]
	if last.IsZero() {
		p.lastSeen[ticker] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[ticker] = now
	return true
}
