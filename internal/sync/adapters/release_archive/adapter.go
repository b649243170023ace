// Package releasearchive fetches published chart packages from
// upstream release assets.
package releasearchive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gopkg.in/yaml.v3"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// Adapter implements ports.PackagePort by downloading chart archives
// from the upstream release download URL pattern:
//
//	{baseURL}/v{version}/{chart}-{version}.tgz
type Adapter struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a package adapter for an upstream "owner/repo" slug.
// Outbound requests carry OTel HTTP instrumentation.
func New(upstream string, logger *slog.Logger) *Adapter {
	return &Adapter{
		baseURL: fmt.Sprintf("https://github.com/%s/releases/download", upstream),
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:  logger,
	}
}

// NewWithBaseURL creates an adapter against an explicit download base
// URL. Used by tests to point at a local server.
func NewWithBaseURL(baseURL string, logger *slog.Logger) *Adapter {
	return &Adapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:  logger,
	}
}

// packageURL returns the download location of a chart package.
func (a *Adapter) packageURL(chart, version string) string {
	return fmt.Sprintf("%s/v%s/%s-%s.tgz", a.baseURL, version, chart, version)
}

// Download fetches the package into destDir/v{version}/ and returns
// its metadata, sha256 digest, and recorded URL.
func (a *Adapter) Download(ctx context.Context, chart, version, destDir string) (domain.ChartPackage, error) {
	url := a.packageURL(chart, version)
	a.logger.Info("downloading chart package", "chart", chart, "version", version)

	versionDir := filepath.Join(destDir, "v"+version)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return domain.ChartPackage{}, fmt.Errorf("creating version dir: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.tgz", chart, version)
	dest := filepath.Join(versionDir, filename)

	digest, err := a.fetchTo(ctx, url, chart, version, dest)
	if err != nil {
		return domain.ChartPackage{}, err
	}

	md, err := readChartMetadata(dest, chart)
	if err != nil {
		return domain.ChartPackage{}, fmt.Errorf("reading metadata from %s: %w", filename, err)
	}

	return domain.ChartPackage{
		Metadata: md,
		Filename: filename,
		Digest:   digest,
		URL:      url,
	}, nil
}

// ExtractChart fetches the package and unpacks it into destDir,
// producing destDir/{chart}/....
func (a *Adapter) ExtractChart(ctx context.Context, chart, version, destDir string) error {
	url := a.packageURL(chart, version)
	a.logger.Info("extracting chart package", "chart", chart, "version", version, "dest", destDir)

	resp, err := a.get(ctx, url, chart, version)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating dest dir: %w", err)
	}
	if err := extractTarGz(resp.Body, destDir); err != nil {
		return fmt.Errorf("extracting %s-%s.tgz: %w", chart, version, err)
	}
	return nil
}

// get issues the request and maps 404 to a domain NotFoundError.
func (a *Adapter) get(ctx context.Context, url, chart, version string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, domain.NewNotFoundError(chart, version)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d downloading %s", resp.StatusCode, url)
	}
	return resp, nil
}

// fetchTo streams the package to dest, returning its sha256 digest.
func (a *Adapter) fetchTo(ctx context.Context, url, chart, version, dest string) (string, error) {
	resp, err := a.get(ctx, url, chart, version)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readChartMetadata pulls Chart.yaml out of a packaged chart archive.
func readChartMetadata(pkgPath, chart string) (domain.ChartMetadata, error) {
	f, err := os.Open(pkgPath)
	if err != nil {
		return domain.ChartMetadata{}, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return domain.ChartMetadata{}, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	want := chart + "/Chart.yaml"
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.ChartMetadata{}, fmt.Errorf("reading tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || filepath.Clean(header.Name) != want {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return domain.ChartMetadata{}, fmt.Errorf("reading Chart.yaml: %w", err)
		}
		var md domain.ChartMetadata
		if err := yaml.Unmarshal(data, &md); err != nil {
			return domain.ChartMetadata{}, fmt.Errorf("parsing Chart.yaml: %w", err)
		}
		return md, nil
	}
	return domain.ChartMetadata{}, fmt.Errorf("archive has no %s", want)
}

// extractTarGz unpacks a gzipped tar stream into dest, refusing paths
// that would escape it.
func extractTarGz(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target := filepath.Join(dest, header.Name)
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("creating file: %w", err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("writing file: %w", err)
			}
			f.Close()
		}
	}
	return nil
}
