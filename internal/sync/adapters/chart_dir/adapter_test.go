package chartdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeChart(t *testing.T, root, chart, version string) {
	t.Helper()
	dir := filepath.Join(root, chart)
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	chartYAML := "apiVersion: v2\nname: " + chart + "\nversion: " + version + "\nappVersion: " + version + "\n"
	if err := os.WriteFile(filepath.Join(dir, "Chart.yaml"), []byte(chartYAML), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCurrentVersion(t *testing.T) {
	root := t.TempDir()
	writeChart(t, root, "fleet", "0.10.1")

	store := New(root, "fleet")
	got, err := store.CurrentVersion(context.Background())
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if got != "0.10.1" {
		t.Errorf("CurrentVersion = %q, want 0.10.1", got)
	}
}

func TestCurrentVersion_MissingChart(t *testing.T) {
	store := New(t.TempDir(), "fleet")
	if _, err := store.CurrentVersion(context.Background()); err == nil {
		t.Fatal("expected error for missing chart")
	}
}

func TestMetadata(t *testing.T) {
	root := t.TempDir()
	writeChart(t, root, "fleet-agent", "0.9.0")

	store := New(root, "fleet")
	md, err := store.Metadata(context.Background(), "fleet-agent")
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if md.Name != "fleet-agent" || md.Version != "0.9.0" || md.AppVersion != "0.9.0" {
		t.Errorf("metadata = %+v", md)
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	writeChart(t, root, "fleet-crd", "0.10.1")

	store := New(root, "fleet")
	ctx := context.Background()

	if err := store.Remove(ctx, "fleet-crd"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "fleet-crd")); !os.IsNotExist(err) {
		t.Error("chart directory still present after Remove")
	}

	// Removing an absent chart is fine.
	if err := store.Remove(ctx, "fleet-crd"); err != nil {
		t.Errorf("second Remove failed: %v", err)
	}
}

func TestInvalidChartNames(t *testing.T) {
	store := New(t.TempDir(), "fleet")
	ctx := context.Background()

	for _, name := range []string{"", "..", "a/b", `a\b`} {
		if err := store.Remove(ctx, name); err == nil {
			t.Errorf("Remove(%q) should fail", name)
		}
		if _, err := store.Metadata(ctx, name); err == nil {
			t.Errorf("Metadata(%q) should fail", name)
		}
	}
}
