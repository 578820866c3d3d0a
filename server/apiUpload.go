package server

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pedwatch/pedwatch/pkg/www"
)

// Snapshot uploads are camera frames, so they can be a few MB, but anything
// beyond this is garbage input
const maxUploadBytes = 32 * 1024 * 1024

func (s *Server) httpUpload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		www.PanicBadRequestf("No file received")
	}
	defer file.Close()
	www.Check(s.Uploads.Save(header.Filename, file))
	www.SendText(w, fmt.Sprintf("Saved %v", header.Filename))
}
