package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pedwatch/pedwatch/pkg/www"
)

func (s *Server) SetupRouter() *httprouter.Router {
	router := httprouter.New()
	www.Handle(s.Log, router, "GET", "/", s.httpIndex)
	www.Handle(s.Log, router, "POST", "/upload", s.httpUpload)
	www.Handle(s.Log, router, "POST", "/trigger", s.httpTrigger)
	www.Handle(s.Log, router, "GET", "/get_time", s.httpGetTime)
	www.Handle(s.Log, router, "GET", "/latest", s.httpLatestRecords)
	www.Handle(s.Log, router, "GET", "/ws", s.httpWebSocket)
	router.Handler("GET", "/metrics", s.Metrics.Handler())
	return router
}

func (s *Server) httpIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	www.SendText(w, "pedwatch: pedestrian waiting-area monitor")
}
