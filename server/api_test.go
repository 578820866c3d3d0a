package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/logs"
	"github.com/pedwatch/pedwatch/pkg/nn"
	"github.com/pedwatch/pedwatch/server/region"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, model nn.ObjectDetector) *Server {
	root := t.TempDir()
	reg, err := region.NewWaitingRegion([]nn.Point{
		{X: 0, Y: 40},
		{X: 60, Y: 40},
		{X: 60, Y: 47},
		{X: 0, Y: 47},
	}, 10)
	require.NoError(t, err)
	s, err := NewServer(logs.NewTestingLog(t), Config{
		UploadsDir:   filepath.Join(root, "uploaded_images"),
		ResultsDir:   filepath.Join(root, "results"),
		RecordDBFile: filepath.Join(root, "detections.sqlite"),
		DecisionFile: filepath.Join(root, "control_signal.json"),
		Region:       reg,
		Detector:     model,
		Workers:      2,
	})
	require.NoError(t, err)
	return s
}

func testJPEG(t *testing.T) []byte {
	img := cimg.NewImage(64, 48, cimg.PixelFormatRGB)
	jpg, err := cimg.Compress(img, cimg.MakeCompressParams(cimg.Sampling420, 90, 0))
	require.NoError(t, err)
	return jpg
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	r := httptest.NewRequest("POST", "/upload", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}

func TestUpload(t *testing.T) {
	s := testServer(t, nn.NewScriptedDetector())
	router := s.SetupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "file", "cam01.jpg", testJPEG(t)))
	require.Equal(t, 200, w.Code)
	require.Equal(t, "Saved cam01.jpg", w.Body.String())

	stored, err := s.Uploads.Read("cam01.jpg")
	require.NoError(t, err)
	require.Equal(t, testJPEG(t), stored)

	// Wrong field name -> 400
	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "wrong", "cam01.jpg", testJPEG(t)))
	require.Equal(t, 400, w.Code)
}

func TestTrigger(t *testing.T) {
	s := testServer(t, nn.NewScriptedDetector())
	router := s.SetupRouter()

	form := url.Values{"count": {"2"}}
	r := httptest.NewRequest("POST", "/trigger", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, 200, w.Code)
	resp := map[string]string{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])

	// Default count when the field is absent
	r = httptest.NewRequest("POST", "/trigger", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, 200, w.Code)

	// Malformed and non-positive counts are input errors
	for _, bad := range []string{"abc", "0", "-3"} {
		form := url.Values{"count": {bad}}
		r := httptest.NewRequest("POST", "/trigger", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		require.Equal(t, 400, w.Code, "count=%v", bad)
	}
}

// GET /get_time before any publish -> 404, distinct from corruption -> 400
func TestGetTimeStates(t *testing.T) {
	s := testServer(t, nn.NewScriptedDetector())
	router := s.SetupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/get_time", nil))
	require.Equal(t, 404, w.Code)

	// Corrupt durable state
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(s.Uploads.Root), "control_signal.json"), []byte("{broken"), 0644))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/get_time", nil))
	require.Equal(t, 400, w.Code)
}

func TestEndToEnd(t *testing.T) {
	// One pedestrian in the waiting band of every frame -> medium flow
	model := nn.NewScriptedDetector([]nn.ObjectDetection{
		{Label: "pedestrian", Confidence: 0.9, Box: nn.Rect{X: 5, Y: 15, Width: 10, Height: 20}},
	})
	s := testServer(t, model)
	router := s.SetupRouter()

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartUpload(t, "file", name, testJPEG(t)))
		require.Equal(t, 200, w.Code)
	}

	// Run synchronously; the HTTP trigger would dispatch this in the background
	s.Pipeline.Run(3)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/get_time", nil))
	require.Equal(t, 200, w.Code)
	resp := getTimeResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 20, resp.ExtendSeconds)
	require.Len(t, resp.Images, 3)
	for _, img := range resp.Images {
		require.True(t, strings.HasPrefix(img, "data:image/jpeg;base64,"))
	}

	// Audit log via /latest
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/latest?n=10", nil))
	require.Equal(t, 200, w.Code)
	records := []map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 3)
}
