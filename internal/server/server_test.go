package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewServer(dir, logger), dir
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestIndexListsReportsNewestFirst(t *testing.T) {
	s, dir := newTestServer(t)
	for _, name := range []string{"2026-08-01_report", "2026-08-20_report", "2026-08-10_report"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// Not a directory, must not be listed.
	if err := os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("index request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	page := string(body)

	if strings.Contains(page, "stray.txt") {
		t.Error("index listed a plain file")
	}

	newest := strings.Index(page, "2026-08-20_report")
	oldest := strings.Index(page, "2026-08-01_report")
	if newest == -1 || oldest == -1 {
		t.Fatalf("index missing report entries:\n%s", page)
	}
	if newest > oldest {
		t.Error("index is not sorted newest first")
	}
}

func TestServesReportFiles(t *testing.T) {
	s, dir := newTestServer(t)
	reportDir := filepath.Join(dir, "2026-08-20_report")
	if err := os.Mkdir(reportDir, 0755); err != nil {
		t.Fatal(err)
	}
	want := []byte("not really a png")
	if err := os.WriteFile(filepath.Join(reportDir, "summary.png"), want, 0644); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/reports/2026-08-20_report/summary.png")
	if err != nil {
		t.Fatalf("file request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("file status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != string(want) {
		t.Errorf("served file content = %q, want %q", body, want)
	}
}

func TestReportPathRejectsTraversal(t *testing.T) {
	s, _ := newTestServer(t)

	for _, bad := range []string{"../secrets", "/etc/passwd", "..", "a/../../b"} {
		if _, err := s.ReportPath(bad); err == nil {
			t.Errorf("ReportPath(%q) accepted a traversal path", bad)
		}
	}

	got, err := s.ReportPath("2026-08-20_report")
	if err != nil {
		t.Fatalf("ReportPath rejected a valid name: %v", err)
	}
	if filepath.Base(got) != "2026-08-20_report" {
		t.Errorf("ReportPath = %q", got)
	}
}
