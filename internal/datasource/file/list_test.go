package file

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return dir
}

func names(srcs []*Local) []string {
	out := make([]string, 0, len(srcs))
	for _, s := range srcs {
		out = append(out, filepath.Base(s.Name()))
	}
	return out
}

func TestList(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		files   []string
		pattern string
		want    []string
	}{
		{
			name:  "default_pattern_csv_only_sorted",
			files: []string{"b.csv", "notes.txt", "a.csv", "c.CSV"},
			want:  []string{"a.csv", "b.csv"},
		},
		{
			name:    "brace_pattern",
			files:   []string{"a.csv", "b.txt", "c.json"},
			pattern: "*.{csv,txt}",
			want:    []string{"a.csv", "b.txt"},
		},
		{
			name:    "prefix_pattern",
			files:   []string{"2024-01.csv", "2023-12.csv", "readme.csv"},
			pattern: "20??-*.csv",
			want:    []string{"2023-12.csv", "2024-01.csv"},
		},
		{
			name:  "empty_dir",
			files: nil,
			want:  []string{},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			dir := writeTempFiles(t, c.files...)
			got, err := List(dir, c.pattern)
			if err != nil {
				t.Fatalf("List error: %v", err)
			}
			if !reflect.DeepEqual(names(got), c.want) {
				t.Fatalf("List = %#v, want %#v", names(got), c.want)
			}
		})
	}
}

func TestList_SkipsSubdirectories(t *testing.T) {
	t.Parallel()

	dir := writeTempFiles(t, "a.csv")
	if err := os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	got, err := List(dir, "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if want := []string{"a.csv"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("List = %#v, want %#v", names(got), want)
	}
}

func TestList_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := List(filepath.Join(t.TempDir(), "nope"), "")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestList_BadPattern(t *testing.T) {
	t.Parallel()

	if _, err := List(t.TempDir(), "[a-"); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}
