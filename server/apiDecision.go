package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/julienschmidt/httprouter"
	"github.com/pedwatch/pedwatch/pkg/www"
	"github.com/pedwatch/pedwatch/server/decision"
)

// Number of annotated frames returned alongside the decision
const numArtifactImages = 3

type getTimeResponse struct {
	ExtendSeconds int      `json:"extend_seconds"`
	Images        []string `json:"images"`
}

// httpGetTime returns the current green-light extension plus the newest
// annotated frames, base64-encoded for direct use in an <img> tag
func (s *Server) httpGetTime(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	d, err := s.Publisher.Read()
	if errors.Is(err, decision.ErrNoDecision) {
		www.PanicNotFoundf("No decision published yet")
	} else if errors.Is(err, decision.ErrCorrupt) {
		www.PanicBadRequestf("Decision state is corrupt")
	}
	www.Check(err)

	paths, err := s.Results.LatestImages(numArtifactImages)
	www.Check(err)
	images := []string{}
	for _, p := range paths {
		jpg, err := s.Results.Read(filepath.Base(p))
		if err != nil {
			s.Log.Warnf("Failed to read artifact %v: %v", p, err)
			continue
		}
		images = append(images, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(jpg))
	}

	www.SendJSON(w, &getTimeResponse{
		ExtendSeconds: d.ExtendSeconds,
		Images:        images,
	})
}

// httpLatestRecords returns the newest entries of the append-only detection log
func (s *Server) httpLatestRecords(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n := www.QueryIntDefault(r, "n", 3)
	if n <= 0 {
		www.PanicBadRequestf("n must be a positive integer")
	}
	records, err := s.Records.Latest(n)
	www.Check(err)
	www.SendJSON(w, records)
}
