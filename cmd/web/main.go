package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"oss-activity/config"
	"oss-activity/logger"
	"oss-activity/web"
)

func main() {
	var (
		port       string
		configFile string
		outputDir  string
	)
	flag.StringVar(&port, "port", "", "Port to run the server on (default WEB_PORT or 8080)")
	flag.StringVar(&configFile, "config", "", "Path to a .env override file")
	flag.StringVar(&outputDir, "output-dir", "", "Snapshot root to serve")
	flag.Parse()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	if port != "" {
		cfg.WebPort = port
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	server := web.NewServer(cfg, log)
	if err := server.Start(cfg.WebPort); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
