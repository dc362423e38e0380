// Package server implements the HTTP server that exposes generated reports.
//
// This package provides:
//   - An index page listing report directories, newest first
//   - Static serving of the PNG figures under /reports/
//   - A health endpoint for monitoring
//   - Structured logging of all HTTP requests
package server
