package worker

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"sjsage522/tapeworker/helpers"
	"sjsage522/tapeworker/internal/economics"
	"sjsage522/tapeworker/internal/record"
	"sjsage522/tapeworker/internal/shop"
	"sjsage522/tapeworker/pkg/errors"
	"sjsage522/tapeworker/services/cache"
	"sjsage522/tapeworker/services/extractor"
	"sjsage522/tapeworker/services/ledger"
	"sjsage522/tapeworker/services/publisher"
)

// sampleSize is how many items per shop LogSample prints
const sampleSize = 3

// RunRecorder stores finished runs
type RunRecorder interface {
	RecordRun(ctx context.Context, run ledger.Run) (string, error)
}

// Options tune a worker
type Options struct {
	// Concurrency bounds the number of shops processed at once
	Concurrency int
	// CacheTTL is how long crawl hits are reused; zero disables caching
	CacheTTL time.Duration
	Template shop.Template
	Rates    economics.Rates
	// LogSample logs the first sampleSize items of every shop
	LogSample bool
}

// Report is the outcome of one shop in one run
type Report struct {
	Shop     string
	RunID    string
	Hits     int
	Items    int
	Cost     float64
	Cached   bool
	Duration time.Duration
	Err      error
}

// Worker handles the crawl, extract and publish process
type Worker struct {
	shops     []shop.Shop
	service   extractor.Service
	cache     cache.CacheService
	publisher publisher.Publisher
	ledger    RunRecorder
	logger    helpers.LoggerInterface
	opts      Options
}

// NewWorker creates a new worker. cache and ledger may be nil.
func NewWorker(
	shops []shop.Shop,
	service extractor.Service,
	c cache.CacheService,
	pub publisher.Publisher,
	l RunRecorder,
	logger helpers.LoggerInterface,
	opts Options,
) *Worker {
	if c == nil {
		c = cache.NopCache{}
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Rates == nil {
		opts.Rates = economics.DefaultRates()
	}
	return &Worker{
		shops:     shops,
		service:   service,
		cache:     c,
		publisher: pub,
		ledger:    l,
		logger:    logger,
		opts:      opts,
	}
}

// Start runs all shops, then repeats every interval until ctx is done.
// A non-positive interval runs once.
func (w *Worker) Start(ctx context.Context, interval time.Duration) {
	for {
		start := time.Now()
		w.RunOnce(ctx)
		w.logger.LogInfo("run took %s", time.Since(start).Round(time.Millisecond))

		if interval <= 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// RunOnce processes every shop, flushes the publisher and logs the cost
// report. Reports are in shop order.
func (w *Worker) RunOnce(ctx context.Context) []Report {
	reports := make([]Report, len(w.shops))

	var g errgroup.Group
	g.SetLimit(w.opts.Concurrency)
	for i, s := range w.shops {
		g.Go(func() error {
			reports[i] = w.runShop(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	if err := w.publisher.Flush(); err != nil {
		w.logger.LogError("publisher", errors.NewPublisher("", "flush failed", err))
	}

	w.logger.LogInfo("%s", CostReport(reports))
	return reports
}

// runShop crawls, extracts, annotates, publishes and records one shop
func (w *Worker) runShop(ctx context.Context, s shop.Shop) Report {
	report := Report{Shop: s.Name}
	start := time.Now()

	err := w.process(ctx, s, &report)
	report.Duration = time.Since(start)
	if err != nil {
		report.Err = err
		w.logger.LogError(s.Name, err)
	}

	if w.ledger != nil {
		run := ledger.Run{
			Shop:       s.Name,
			StartedAt:  start,
			FinishedAt: start.Add(report.Duration),
			Hits:       report.Hits,
			Items:      report.Items,
			Cost:       report.Cost,
		}
		if err != nil {
			run.Err = err.Error()
		}
		id, lerr := w.ledger.RecordRun(ctx, run)
		if lerr != nil {
			w.logger.LogError(s.Name, errors.NewStorage(s.Name, "failed to record run", lerr))
		}
		report.RunID = id
	}
	return report
}

func (w *Worker) process(ctx context.Context, s shop.Shop, report *Report) error {
	hits, cost, cached, err := w.crawl(ctx, s)
	if err != nil {
		return err
	}
	report.Hits = len(hits)
	report.Cost = cost
	report.Cached = cached

	limit := min(len(hits), s.ExtractLimit())
	if limit == 0 {
		w.logger.LogInfo("%s: no product URLs found", s.Name)
		return nil
	}

	out, err := w.service.Extract(ctx, extractor.ExtractRequest{
		Shop:     s,
		URLs:     hits[:limit],
		Template: w.opts.Template,
	})
	if err != nil {
		return err
	}
	report.Cost += out.Metrics.Cost.Total

	if t, ok := w.publisher.(publisher.Truncater); ok {
		if err := t.Truncate(s.Name); err != nil {
			return errors.NewPublisher(s.Name, "failed to reset output", err)
		}
	}

	for i, item := range out.Items {
		rec := w.annotate(s, item)
		data, err := json.Marshal(rec)
		if err != nil {
			w.logger.LogError(s.Name, errors.NewParsing(s.Name, "failed to encode item", err))
			continue
		}
		if err := w.publisher.Publish(s.Name, data); err != nil {
			w.logger.LogError(s.Name, errors.NewPublisher(s.Name, "failed to publish item", err))
			if !publisher.Delivered(err) {
				continue
			}
		}
		report.Items++

		if i < sampleSize && w.opts.LogSample {
			w.logger.LogInfo("%s sample: %s", s.Name, string(data))
		}
	}
	return nil
}

// crawl returns the shop's hits, from cache when possible
func (w *Worker) crawl(ctx context.Context, s shop.Shop) ([]string, float64, bool, error) {
	key := cache.CrawlKey(s.Name)

	if w.opts.CacheTTL > 0 {
		var hits []string
		err := cache.GetJSON(w.cache, key, &hits)
		if err == nil {
			return hits, 0, true, nil
		}
		if !stderrors.Is(err, cache.ErrCacheMiss) {
			w.logger.LogInfo("%s: crawl cache unavailable: %v", s.Name, err)
		}
	}

	out, err := w.service.Crawl(ctx, extractor.CrawlRequest{Shop: s})
	if err != nil {
		return nil, 0, false, err
	}

	if w.opts.CacheTTL > 0 {
		if err := cache.SetJSON(w.cache, key, out.Hits, w.opts.CacheTTL); err != nil {
			w.logger.LogInfo("%s: %v", s.Name, errors.NewCache(s.Name, "failed to store crawl hits", err))
		}
	}
	return out.Hits, out.Metrics.Cost.Total, false, nil
}

// annotate adds shop provenance and the euro figures
func (w *Worker) annotate(s shop.Shop, item record.Record) record.Record {
	rec := item.Set("shopName", s.Name)
	if s.Domain != "" {
		rec = rec.Set("domain", s.Domain)
	}
	if s.Country != "" {
		rec = rec.Set("country", s.Country)
	}
	return economics.Annotate(rec, w.opts.Rates)
}

// CostReport formats one line per shop with item count and USD per 1k items
func CostReport(reports []Report) string {
	var b strings.Builder
	b.WriteString("== cost ==")
	for _, r := range reports {
		fmt.Fprintf(&b, "\n%s\t%d\t", r.Shop, r.Items)
		if r.Err != nil {
			b.WriteString(failureLabel(r.Err))
		} else if perK, ok := ledger.CostPerThousand(r.Cost, r.Items); ok {
			fmt.Fprintf(&b, "%.2f USD per 1k", perK)
		} else {
			b.WriteString("N/A")
		}
	}
	return b.String()
}

func failureLabel(err error) string {
	if typ, ok := errors.TypeOf(err); ok && typ == errors.ErrorTypeRateLimit {
		return "rate_limited"
	}
	return "failed"
}
