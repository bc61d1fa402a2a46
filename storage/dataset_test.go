package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeGzipFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := pgzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInferSourceKind(t *testing.T) {
	tests := []struct {
		path string
		want SourceKind
	}{
		{"corpus.txt", SourceText},
		{"genome.fasta", SourceFASTA},
		{"genome.fa", SourceFASTA},
		{"genome.fna", SourceFASTA},
		{"genome.FA", SourceFASTA},
		{"genome.fa.gz", SourceFASTA},
		{"notes.md", SourceText},
		{"archive.txt.gz", SourceText},
	}
	for _, tc := range tests {
		if got := InferSourceKind(tc.path); got != tc.want {
			t.Errorf("InferSourceKind(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestLoadTextTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "words.txt", []byte("alpha beta gamma"))

	arena := NewArena(1 << 20)
	table, err := LoadTextTable(arena, path)
	if err != nil {
		t.Fatal(err)
	}

	if table.Name != "words.txt" {
		t.Errorf("Name = %q, want words.txt", table.Name)
	}
	if len(table.Rows) != 1 || string(table.Rows[0].Data) != "alpha beta gamma" {
		t.Errorf("rows wrong: %+v", table.Rows)
	}
}

func TestLoadGzippedText(t *testing.T) {
	dir := t.TempDir()
	path := writeGzipFile(t, dir, "words.txt.gz", []byte("compressed content"))

	arena := NewArena(1 << 20)
	table, err := LoadTextTable(arena, path)
	if err != nil {
		t.Fatal(err)
	}
	if string(table.Rows[0].Data) != "compressed content" {
		t.Errorf("Data = %q", table.Rows[0].Data)
	}
}

func TestLoadGzippedFasta(t *testing.T) {
	dir := t.TempDir()
	path := writeGzipFile(t, dir, "seq.fa.gz", []byte(">s1\nACGT\n>s2\nTTAA\n"))

	arena := NewArena(1 << 20)
	table, err := LoadFastaTable(arena, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 || string(table.Rows[1].Data) != "TTAA" {
		t.Errorf("rows wrong: %+v", table.Rows)
	}
}

func TestLoadDatasetFromPaths(t *testing.T) {
	dir := t.TempDir()
	text := writeFile(t, dir, "notes.txt", []byte("hello"))
	fasta := writeFile(t, dir, "seq.fasta", []byte(">id\nAC\n"))

	arena := NewArena(1 << 20)
	ds, err := LoadDatasetFromPaths(arena, []string{text, fasta})
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(ds.Tables))
	}
	if ds.Tables[0].Name != "notes.txt" || ds.Tables[1].Name != "seq.fasta" {
		t.Errorf("table order wrong: %s, %s", ds.Tables[0].Name, ds.Tables[1].Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	arena := NewArena(1 << 20)
	if _, err := LoadTextTable(arena, "/nonexistent/file.txt"); err == nil {
		t.Error("missing file should fail")
	}
}
