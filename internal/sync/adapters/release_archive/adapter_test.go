package releasearchive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rancher/fleet-helm-charts/internal/platform/logger"
	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// chartArchive builds a packaged chart the way helm package lays one
// out: a gzipped tar rooted at the chart name.
func chartArchive(t *testing.T, chart, version string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	files := map[string]string{
		chart + "/Chart.yaml": fmt.Sprintf(
			"apiVersion: v2\nname: %s\nversion: %s\nappVersion: %s\n", chart, version, version),
		chart + "/values.yaml":               "replicas: 1\n",
		chart + "/templates/deployment.yaml": "kind: Deployment\n",
	}
	for name, content := range files {
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newArchiveServer(t *testing.T, packages map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg, ok := packages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(pkg)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload(t *testing.T) {
	pkg := chartArchive(t, "fleet", "0.10.1")
	srv := newArchiveServer(t, map[string][]byte{
		"/v0.10.1/fleet-0.10.1.tgz": pkg,
	})

	adapter := NewWithBaseURL(srv.URL, logger.New("error"))
	destDir := t.TempDir()

	got, err := adapter.Download(context.Background(), "fleet", "0.10.1", destDir)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	sum := sha256.Sum256(pkg)
	if got.Digest != hex.EncodeToString(sum[:]) {
		t.Errorf("digest = %s, want sha256 of the served archive", got.Digest)
	}
	if got.Filename != "fleet-0.10.1.tgz" {
		t.Errorf("filename = %s", got.Filename)
	}
	if got.URL != srv.URL+"/v0.10.1/fleet-0.10.1.tgz" {
		t.Errorf("url = %s", got.URL)
	}
	if got.Metadata.Name != "fleet" || got.Metadata.Version != "0.10.1" {
		t.Errorf("metadata = %+v", got.Metadata)
	}

	onDisk := filepath.Join(destDir, "v0.10.1", "fleet-0.10.1.tgz")
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("package not written: %v", err)
	}
	if !bytes.Equal(data, pkg) {
		t.Error("package on disk differs from the served archive")
	}
}

func TestExtractChart(t *testing.T) {
	srv := newArchiveServer(t, map[string][]byte{
		"/v0.10.1/fleet-agent-0.10.1.tgz": chartArchive(t, "fleet-agent", "0.10.1"),
	})

	adapter := NewWithBaseURL(srv.URL, logger.New("error"))
	destDir := t.TempDir()

	if err := adapter.ExtractChart(context.Background(), "fleet-agent", "0.10.1", destDir); err != nil {
		t.Fatalf("ExtractChart failed: %v", err)
	}

	for _, rel := range []string{"Chart.yaml", "values.yaml", "templates/deployment.yaml"} {
		if _, err := os.Stat(filepath.Join(destDir, "fleet-agent", rel)); err != nil {
			t.Errorf("missing extracted file %s: %v", rel, err)
		}
	}
}

func TestDownload_NotFound(t *testing.T) {
	srv := newArchiveServer(t, nil)

	adapter := NewWithBaseURL(srv.URL, logger.New("error"))

	_, err := adapter.Download(context.Background(), "fleet", "9.9.9", t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a missing release asset")
	}
	if !domain.IsNotFound(err) {
		t.Errorf("error %v should be a not-found error", err)
	}
}

func TestExtractChart_RejectsEscapingPaths(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := "oops"
	if err := tw.WriteHeader(&tar.Header{
		Name:     "../escape.txt",
		Mode:     0o644,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	gz.Close()

	srv := newArchiveServer(t, map[string][]byte{
		"/v0.10.1/fleet-0.10.1.tgz": buf.Bytes(),
	})

	adapter := NewWithBaseURL(srv.URL, logger.New("error"))

	if err := adapter.ExtractChart(context.Background(), "fleet", "0.10.1", t.TempDir()); err == nil {
		t.Fatal("expected an error for an archive entry escaping the destination")
	}
}
