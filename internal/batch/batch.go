// Package batch coordinates the per-row normalize-and-resolve pipeline over
// a whole input set.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/martinsuchenak/fqdngen/internal/log"
	"github.com/martinsuchenak/fqdngen/internal/model"
	"github.com/martinsuchenak/fqdngen/internal/normalize"
	"github.com/martinsuchenak/fqdngen/internal/probe"
	"github.com/martinsuchenak/fqdngen/internal/resolve"
)

// ErrNoRows means the input source produced nothing to evaluate. It is the
// only whole-batch-fatal condition; every per-row failure just skips its row.
var ErrNoRows = errors.New("no input rows provided")

const defaultWorkers = 20

// Coordinator evaluates batches of raw rows into resolution records.
type Coordinator struct {
	resolver resolve.Resolver
	prober   *probe.PingProber // nil disables the reachability probe
	settings model.Settings
}

// New creates a coordinator. prober may be nil to skip ICMP probing.
func New(resolver resolve.Resolver, prober *probe.PingProber, settings model.Settings) *Coordinator {
	return &Coordinator{
		resolver: resolver,
		prober:   prober,
		settings: settings,
	}
}

// Run evaluates every row and returns the finished run. Rows that fail
// normalization or validation are logged and counted, never fatal. With
// concurrency enabled the records arrive in completion order, not input
// order.
func (c *Coordinator) Run(ctx context.Context, rows []model.Row) (*model.Run, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	run := &model.Run{
		ID:        generateID(),
		StartedAt: time.Now(),
		TotalRows: len(rows),
	}

	log.Info("Starting batch evaluation", "run_id", run.ID, "rows", len(rows), "concurrent", c.settings.Concurrent)

	if c.settings.Concurrent {
		c.runConcurrent(ctx, run, rows)
	} else {
		for _, row := range rows {
			record, err := c.processRow(ctx, row)
			c.collect(run, row, record, err, nil)
		}
	}

	now := time.Now()
	run.CompletedAt = now
	run.DurationSeconds = int(now.Sub(run.StartedAt).Seconds())
	run.Produced = len(run.Records)
	run.Skipped = len(run.Failures)

	log.Info("Batch evaluation completed", "run_id", run.ID, "produced", run.Produced, "skipped", run.Skipped, "duration", run.DurationSeconds)
	return run, nil
}

// runConcurrent fans rows out to a bounded pool. Each worker blocks on its
// own row's DNS lookups, so batch latency is governed by the slowest row over
// the pool width rather than the sum of all lookups.
func (c *Coordinator) runConcurrent(ctx context.Context, run *model.Run, rows []model.Row) {
	workers := c.settings.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, row := range rows {
		wg.Add(1)

		go func(row model.Row) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			record, err := c.processRow(ctx, row)
			c.collect(run, row, record, err, &mu)
		}(row)
	}

	wg.Wait()
}

// collect appends one row outcome to the run. The run is the single piece of
// shared mutable state; mu guards it in concurrent mode.
func (c *Coordinator) collect(run *model.Run, row model.Row, record *model.Record, err error, mu *sync.Mutex) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}

	if err != nil {
		log.Warn("Row skipped", "hostname", row.DeviceHostname, "ip", row.IPAddress, "error", err)
		run.Failures = append(run.Failures, model.RowFailure{
			Hostname:  row.DeviceHostname,
			IPAddress: row.IPAddress,
			Reason:    err.Error(),
		})
		return
	}

	run.Records = append(run.Records, record)
}

// processRow runs the full pipeline for one row: hostname normalization,
// optional interface normalization, record construction, optional ICMP probe.
func (c *Coordinator) processRow(ctx context.Context, row model.Row) (*model.Record, error) {
	log.Debug("Evaluating row", "hostname", row.DeviceHostname, "ip", row.IPAddress)

	hostname, err := normalize.DeviceHostname(row.DeviceHostname)
	if err != nil {
		return nil, fmt.Errorf("normalizing hostname: %w", err)
	}

	if row.InterfaceName != "" {
		hostname, err = normalize.InterfaceHostname(hostname, row.InterfaceName, c.settings.InterfaceMap)
		if err != nil {
			return nil, fmt.Errorf("normalizing interface: %w", err)
		}
	}

	record, err := resolve.Build(ctx, c.resolver, c.settings, row.IPAddress, hostname, row.Domain)
	if err != nil {
		return nil, err
	}

	if c.prober != nil && c.prober.Privileged() {
		timeout := c.settings.LookupTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		if alive, err := c.prober.Check(ctx, record.IPAddress, timeout); err == nil {
			record.Reachable = &alive
		}
	}

	log.Debug("Row evaluated", "full_name", record.FullName, "forward", record.Forward.Status, "reverse", record.Reverse.Status)
	return record, nil
}

// generateID generates a unique ID
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
