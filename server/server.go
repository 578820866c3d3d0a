// Package server wires the pedwatch components together and exposes the HTTP API
package server

import (
	"net/http"

	"github.com/cyclopcam/logs"
	"github.com/pedwatch/pedwatch/pkg/nn"
	"github.com/pedwatch/pedwatch/server/decision"
	"github.com/pedwatch/pedwatch/server/detect"
	"github.com/pedwatch/pedwatch/server/metrics"
	"github.com/pedwatch/pedwatch/server/pipeline"
	"github.com/pedwatch/pedwatch/server/recorddb"
	"github.com/pedwatch/pedwatch/server/region"
	"github.com/pedwatch/pedwatch/server/store"
	"github.com/pedwatch/pedwatch/server/wshub"
)

// Config is everything NewServer needs to assemble a running system
type Config struct {
	UploadsDir   string // where POST /upload stores snapshots
	ResultsDir   string // where annotated frames are written
	RecordDBFile string // sqlite file of the append-only detection log
	DecisionFile string // durable SignalDecision slot
	Region       *region.WaitingRegion
	Detector     nn.ObjectDetector
	Workers      int // concurrent detection workers (0 = default)
}

type Server struct {
	Log       logs.Log
	Uploads   *store.Dir
	Results   *store.Dir
	Records   *recorddb.RecordDB
	Publisher *decision.Publisher
	Pipeline  *pipeline.Pipeline
	Hub       *wshub.Hub
	Metrics   *metrics.Metrics
}

func NewServer(log logs.Log, cfg Config) (*Server, error) {
	uploads, err := store.NewDir(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}
	results, err := store.NewDir(cfg.ResultsDir)
	if err != nil {
		return nil, err
	}
	records, err := recorddb.Open(log, cfg.RecordDBFile)
	if err != nil {
		return nil, err
	}
	publisher, err := decision.NewPublisher(log, cfg.DecisionFile)
	if err != nil {
		return nil, err
	}
	hub := wshub.NewHub(log)
	met := metrics.New()
	detector := detect.NewDetector(log, cfg.Detector, cfg.Region, results, nil)
	pipe := pipeline.New(log, detector, uploads, records, publisher, pipeline.Options{
		Workers: cfg.Workers,
		Hub:     hub,
		Metrics: met,
	})
	return &Server{
		Log:       log,
		Uploads:   uploads,
		Results:   results,
		Records:   records,
		Publisher: publisher,
		Pipeline:  pipe,
		Hub:       hub,
		Metrics:   met,
	}, nil
}

// port example: ":8080"
func (s *Server) ListenHTTP(port string) error {
	s.Log.Infof("Listening on %v", port)
	return http.ListenAndServe(port, s.SetupRouter())
}
