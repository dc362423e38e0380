package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cistat/internal/server"
)

var (
	serveDir string
	host     string
	port     int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated reports over HTTP",
	Long: `Start an HTTP server exposing a directory of generated reports.

The index page lists report directories newest first; the PNG figures are
served under /reports/.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDir, "dir", getEnvOrDefault("CISTAT_REPORT_DIR", "."), "Directory containing report directories")
	serveCmd.Flags().StringVar(&host, "host", getEnvOrDefault("CISTAT_HOST", "127.0.0.1"), "Host to bind to")
	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(serveDir)
	if err != nil {
		return fmt.Errorf("report directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("report directory path is not a directory: %s", serveDir)
	}

	srv := server.NewServer(serveDir, logrus.StandardLogger())

	logrus.WithFields(logrus.Fields{"host": host, "port": port, "dir": serveDir}).Info("starting HTTP server")
	if err := srv.Start(host, port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
