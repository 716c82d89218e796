package safeio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanUserPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		hasError bool
	}{
		{
			name:     "simple path",
			input:    "work",
			expected: "work",
			hasError: false,
		},
		{
			name:     "relative path",
			input:    "./build/out",
			expected: "build/out",
			hasError: false,
		},
		{
			name:     "absolute path",
			input:    "/tmp/work",
			expected: "/tmp/work",
			hasError: false,
		},
		{
			name:     "traversal",
			input:    "../../etc",
			expected: "",
			hasError: true,
		},
		{
			name:     "traversal in middle",
			input:    "work/../../etc",
			expected: "",
			hasError: true,
		},
		{
			name:     "empty path",
			input:    "",
			expected: ".",
			hasError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CleanUserPath(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")

	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("expected %q, got %q", "first", string(data))
	}

	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("expected %q, got %q", "second", string(data))
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after write")
	}
}

func TestWriteFileAtomicPreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(path, []byte("#!/bin/sh\nexit 0\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode()&0o777 != 0o755 {
		t.Errorf("expected mode 0755, got %o", st.Mode()&0o777)
	}
}

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.so")
	dst := filepath.Join(dir, "dst.so")

	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileAtomic(src, dst); err != nil {
		t.Fatalf("copy failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("expected %q, got %q", "payload", string(data))
	}
}

func TestCopyFileAtomicMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFileAtomic(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Error("expected error for missing source")
	}
}
