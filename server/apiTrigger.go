package server

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pedwatch/pedwatch/pkg/www"
	"github.com/pedwatch/pedwatch/server/pipeline"
)

type triggerResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// httpTrigger starts one analysis run in the background and returns before it
// completes. Per-image failures are asynchronous and never reported here; only
// malformed input and dispatch failures are.
func (s *Server) httpTrigger(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count := www.FormIntDefault(r, "count", pipeline.DefaultBatchSize)
	if count <= 0 {
		www.PanicBadRequestf("count must be a positive integer")
	}
	if err := s.Pipeline.Trigger(count); err != nil {
		www.SendJSONStatus(w, &triggerResponse{
			Status: "error",
			Msg:    err.Error(),
		}, http.StatusInternalServerError)
		return
	}
	www.SendJSON(w, &triggerResponse{
		Status: "ok",
		Msg:    fmt.Sprintf("Analyzing the %v most recent snapshots", count),
	})
}
