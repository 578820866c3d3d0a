package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akamensky/argparse"
	"github.com/coreos/go-systemd/daemon"
	"github.com/cyclopcam/logs"
	"github.com/joho/godotenv"
	"github.com/pedwatch/pedwatch/pkg/nn"
	"github.com/pedwatch/pedwatch/pkg/nnclient"
	"github.com/pedwatch/pedwatch/server"
	"github.com/pedwatch/pedwatch/server/region"
)

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// .env is optional; flags below still win over the environment
	godotenv.Load()

	home, _ := os.UserHomeDir()
	if home == "" {
		home = "/var/lib"
	}
	defaultData := envDefault("PEDWATCH_DATA", filepath.Join(home, "pedwatch"))

	parser := argparse.NewParser("pedwatch", "Pedestrian waiting-area monitor for traffic-signal control")
	port := parser.String("p", "port", &argparse.Options{Help: "HTTP listen address", Default: envDefault("PEDWATCH_PORT", ":8080")})
	dataDir := parser.String("d", "data", &argparse.Options{Help: "Data directory (uploads, results, databases)", Default: defaultData})
	regionFile := parser.String("r", "region", &argparse.Options{Help: "Waiting-region geometry JSON file (built-in scene geometry if omitted)", Default: envDefault("PEDWATCH_REGION", "")})
	detectorURL := parser.String("", "detector", &argparse.Options{Help: "Inference sidecar URL (empty runs a canned detector, for development)", Default: envDefault("PEDWATCH_DETECTOR_URL", "")})
	workers := parser.Int("", "workers", &argparse.Options{Help: "Concurrent detection workers", Default: 0})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	reg := region.DefaultRegion()
	if *regionFile != "" {
		reg, err = region.Load(*regionFile)
		if err != nil {
			logger.Errorf("Failed to load region config: %v", err)
			os.Exit(1)
		}
	}

	var detector nn.ObjectDetector
	if *detectorURL != "" {
		detector = nnclient.NewClient(*detectorURL)
	} else {
		logger.Warnf("No detector URL configured, using a canned detector that finds nothing")
		detector = nn.NewScriptedDetector()
	}
	defer detector.Close()

	srv, err := server.NewServer(logger, server.Config{
		UploadsDir:   filepath.Join(*dataDir, "uploaded_images"),
		ResultsDir:   filepath.Join(*dataDir, "results"),
		RecordDBFile: filepath.Join(*dataDir, "detections.sqlite"),
		DecisionFile: filepath.Join(*dataDir, "control_signal.json"),
		Region:       reg,
		Detector:     detector,
		Workers:      *workers,
	})
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	daemon.SdNotify(false, daemon.SdNotifyReady)

	if err := srv.ListenHTTP(*port); err != nil {
		logger.Errorf("ListenHTTP returned: %v", err)
		os.Exit(1)
	}
}
