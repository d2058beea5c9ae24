package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindImageByExplicitFilename(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "custom.png"))

	got := FindImage(Data{ProjectID: "P1", ImageFilename: "custom.png"}, dir)
	if got != filepath.Join(dir, "custom.png") {
		t.Fatalf("unexpected image path: %q", got)
	}
}

func TestFindImageByProjectIDConvention(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "P1.jpeg"))

	got := FindImage(Data{ProjectID: "P1"}, dir)
	if got != filepath.Join(dir, "P1.jpeg") {
		t.Fatalf("unexpected image path: %q", got)
	}
}

func TestFindImageMissingReturnsEmpty(t *testing.T) {
	if got := FindImage(Data{ProjectID: "none"}, t.TempDir()); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
}

func TestFindLogoPrefersNewest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "logos", "logo.png")
	touch(t, old)
	if err := os.Chtimes(old, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	newest := filepath.Join(dir, "university-logo.jpg")
	touch(t, newest)

	if got := FindLogo(dir); got != newest {
		t.Fatalf("expected newest logo %q, got %q", newest, got)
	}
}

func TestFindLogoCyrillicPattern(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "логотип-вуза.png")
	touch(t, want)

	if got := FindLogo(dir); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFindWorkbookValidatesSignature(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ExpectedWorkbookName)
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := FindWorkbook(dir); err == nil {
		t.Fatalf("expected signature error")
	}

	if err := os.WriteFile(path, append([]byte{'P', 'K', 3, 4}, []byte("rest")...), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := FindWorkbook(dir)
	if err != nil {
		t.Fatalf("FindWorkbook error: %v", err)
	}
	if got != path {
		t.Fatalf("unexpected path: %q", got)
	}
}

func TestFindImagesDirPrefersConventionalName(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "images", "P1.png"))
	touch(t, filepath.Join(dir, "misc", "a.png"))
	touch(t, filepath.Join(dir, "misc", "b.png"))

	got, err := FindImagesDir(dir)
	if err != nil {
		t.Fatalf("FindImagesDir error: %v", err)
	}
	if got != filepath.Join(dir, "images") {
		t.Fatalf("expected conventional dir, got %q", got)
	}
}

func TestFindImagesDirHeuristic(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "фото", "a.png"))
	touch(t, filepath.Join(dir, "фото", "b.png"))
	touch(t, filepath.Join(dir, "docs", "c.txt"))

	got, err := FindImagesDir(dir)
	if err != nil {
		t.Fatalf("FindImagesDir error: %v", err)
	}
	if got != filepath.Join(dir, "фото") {
		t.Fatalf("expected heuristic dir, got %q", got)
	}
}
