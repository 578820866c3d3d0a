// Package nnclient implements nn.ObjectDetector by talking to an inference
// sidecar over HTTP. The sidecar owns the model weights; we send it a JPEG
// and get labeled boxes back.
package nnclient

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bmharper/cimg/v2"
	"github.com/pedwatch/pedwatch/pkg/nn"
)

type detectRequest struct {
	ImageJPEG     string  `json:"imageJPEG"` // base64 JPEG
	MinConfidence float32 `json:"minConfidence"`
}

type detectResponse struct {
	Objects []nn.ObjectDetection `json:"objects"`
}

// Client is an nn.ObjectDetector backed by a remote inference server
type Client struct {
	url    string // eg "http://127.0.0.1:9090/v1/detect"
	client *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

func (c *Client) DetectObjects(img nn.ImageCrop, params *nn.DetectionParams) ([]nn.ObjectDetection, error) {
	if params == nil {
		params = nn.NewDetectionParams()
	}
	wrapped := cimg.WrapImage(img.ImageWidth, img.ImageHeight, cimg.PixelFormatRGB, img.Pixels)
	jpg, err := cimg.Compress(wrapped, cimg.MakeCompressParams(cimg.Sampling420, 90, 0))
	if err != nil {
		return nil, err
	}
	request := &detectRequest{
		ImageJPEG:     base64.StdEncoding.EncodeToString(jpg),
		MinConfidence: params.ProbabilityThreshold,
	}
	response, err := postJSON[detectResponse](c.client, c.url, request)
	if err != nil {
		return nil, err
	}
	return response.Objects, nil
}

func postJSON[T any](client *http.Client, url string, body any) (*T, error) {
	bodyB, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest("POST", url, bytes.NewReader(bodyB))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%v. %v", resp.Status, string(msg))
	}
	var responseObj T
	if err := json.NewDecoder(resp.Body).Decode(&responseObj); err != nil {
		return nil, fmt.Errorf("%v. %w", resp.Status, err)
	}
	return &responseObj, nil
}
