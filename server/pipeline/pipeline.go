// Package pipeline drives one analysis run: pick the most recent uploads,
// detect pedestrians in each, aggregate the counts, publish the decision.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/cyclopcam/logs"
	"github.com/pedwatch/pedwatch/server/decision"
	"github.com/pedwatch/pedwatch/server/detect"
	"github.com/pedwatch/pedwatch/server/metrics"
	"github.com/pedwatch/pedwatch/server/recorddb"
	"github.com/pedwatch/pedwatch/server/store"
	"github.com/pedwatch/pedwatch/server/wshub"
)

const DefaultBatchSize = 3
const DefaultWorkers = 4

// Pipeline owns the analysis flow. Triggers are fire-and-forget; overlapping
// triggers are queued behind the run lock rather than interleaved, so two runs
// never race their publishes (each run still takes its own snapshot of the
// newest N uploads when it starts).
type Pipeline struct {
	log       logs.Log
	detector  *detect.Detector
	uploads   *store.Dir
	records   *recorddb.RecordDB
	publisher *decision.Publisher
	hub       *wshub.Hub       // optional
	metrics   *metrics.Metrics // optional
	workers   int

	runLock sync.Mutex
}

// Options are the optional collaborators of a Pipeline
type Options struct {
	Workers int // concurrent detection workers, DefaultWorkers if zero
	Hub     *wshub.Hub
	Metrics *metrics.Metrics
}

func New(log logs.Log, detector *detect.Detector, uploads *store.Dir, records *recorddb.RecordDB, publisher *decision.Publisher, opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		log:       log,
		detector:  detector,
		uploads:   uploads,
		records:   records,
		publisher: publisher,
		hub:       opts.Hub,
		metrics:   opts.Metrics,
		workers:   workers,
	}
}

// Trigger dispatches one run in the background and returns immediately
func (p *Pipeline) Trigger(batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("Batch size must be a positive integer, got %v", batchSize)
	}
	go p.Run(batchSize)
	return nil
}

// Run analyzes the batchSize most recently uploaded snapshots and publishes
// the resulting decision. Per-image failures contribute a zero count and never
// abort the batch. An empty upload store leaves the previous decision
// untouched; stale-but-valid beats erased state.
func (p *Pipeline) Run(batchSize int) {
	p.runLock.Lock()
	defer p.runLock.Unlock()

	if p.metrics != nil {
		p.metrics.RunsStarted.Add(1)
	}

	paths, err := p.uploads.LatestImages(batchSize)
	if err != nil {
		p.log.Errorf("Failed to list uploaded images: %v", err)
		return
	}
	if len(paths) == 0 {
		p.log.Warnf("No uploaded images to analyze")
		if p.metrics != nil {
			p.metrics.RunsSkipped.Add(1)
		}
		return
	}
	p.log.Infof("Analyzing the %v most recent snapshots", len(paths))

	// Detection work is independent per image, so we fan out, but the publish
	// must wait for the whole batch.
	counts := make([]int, len(paths))
	jobs := make(chan int)
	wg := sync.WaitGroup{}
	for w := 0; w < min(p.workers, len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result := p.detector.DetectFile(paths[i])
				counts[i] = result.PeopleWaiting
				if err := p.records.Add(result.Filename, result.PeopleWaiting); err != nil {
					p.log.Errorf("Failed to record result for %v: %v", result.Filename, err)
				}
				if p.metrics != nil {
					p.metrics.FramesProcessed.Add(1)
				}
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	average, level, err := decision.Aggregate(counts)
	if err != nil {
		p.log.Errorf("Aggregation failed: %v", err)
		return
	}
	d, err := p.publisher.Publish(average, level)
	if err != nil {
		p.log.Errorf("Failed to publish decision: %v", err)
		if p.metrics != nil {
			p.metrics.PublishFailures.Add(1)
		}
		return
	}
	if p.hub != nil {
		p.hub.BroadcastDecision(d)
	}
	if p.metrics != nil {
		p.metrics.LastExtendSeconds.Store(uint64(d.ExtendSeconds))
		p.metrics.RunsCompleted.Add(1)
	}
}
