package fsutils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateDir_Nested(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "sections", "hero-001")
	if err := CreateDir(nested); err != nil {
		t.Fatalf("CreateDir(%q) returned error: %v", nested, err)
	}
	if !DirExists(nested) {
		t.Fatalf("Directory %q was not created", nested)
	}
	// Creating it again is not an error.
	if err := CreateDir(nested); err != nil {
		t.Fatalf("CreateDir(%q) on existing dir returned error: %v", nested, err)
	}
}

func TestWriteNewFile_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")

	if err := WriteNewFile(path, []byte(`{"id":"a"}`)); err != nil {
		t.Fatalf("first WriteNewFile failed: %v", err)
	}
	err := WriteNewFile(path, []byte(`{"id":"b"}`))
	if err == nil {
		t.Fatalf("second WriteNewFile succeeded, expected an error")
	}
	if !IsExist(err) {
		t.Errorf("WriteNewFile error %v should report an existing file", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != `{"id":"a"}` {
		t.Errorf("file was overwritten: got %q", string(got))
	}
}

func TestWriteToFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.css")
	if err := WriteToFile(path, []byte("a{}")); err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}
	if err := WriteToFile(path, []byte("b{}")); err != nil {
		t.Fatalf("WriteToFile overwrite failed: %v", err)
	}
	content, ok := ReadFileOrEmpty(path)
	if !ok || content != "b{}" {
		t.Errorf("ReadFileOrEmpty = (%q, %v), want (\"b{}\", true)", content, ok)
	}

	// Parent directories are not created.
	missingParent := filepath.Join(t.TempDir(), "missing", "style.css")
	if err := WriteToFile(missingParent, []byte("x")); err == nil {
		t.Errorf("WriteToFile(%q) succeeded, expected error for missing directory", missingParent)
	}
}

func TestReadFileOrEmpty_Missing(t *testing.T) {
	content, ok := ReadFileOrEmpty(filepath.Join(t.TempDir(), "nope.liquid"))
	if ok || content != "" {
		t.Errorf("ReadFileOrEmpty on missing file = (%q, %v), want (\"\", false)", content, ok)
	}
}

func TestFileExistsAndDirExists(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "exists.txt")
	if err := os.WriteFile(filePath, nil, 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if !FileExists(filePath) {
		t.Errorf("FileExists(%q) = false, want true", filePath)
	}
	if FileExists(tempDir) {
		t.Errorf("FileExists on a directory returned true")
	}
	if FileExists("") {
		t.Errorf("FileExists(\"\") returned true")
	}
	if !DirExists(tempDir) {
		t.Errorf("DirExists(%q) = false, want true", tempDir)
	}
	if DirExists(filePath) {
		t.Errorf("DirExists on a file returned true")
	}
}

func TestIsWithin(t *testing.T) {
	base := filepath.Join("catalog", "hero-001")
	tests := []struct {
		target string
		want   bool
	}{
		{filepath.Join(base, "section.liquid"), true},
		{filepath.Join(base, "assets", "style.css"), true},
		{base, true},
		{filepath.Join(base, "..", "faq-001", "section.liquid"), false},
		{filepath.Join(base, "..", "..", "etc", "passwd"), false},
		{filepath.Join(base, "..", "hero-001-evil", "x"), false},
	}
	for _, tt := range tests {
		if got := IsWithin(base, tt.target); got != tt.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", base, tt.target, got, tt.want)
		}
	}
}

func TestCopyDir(t *testing.T) {
	tempDir := t.TempDir()

	srcDir := filepath.Join(tempDir, "hero-001")
	if err := os.MkdirAll(filepath.Join(srcDir, "assets"), 0755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "meta.json"), []byte(`{"id":"hero-001"}`), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "assets", "style.css"), []byte("h1{}"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	dstDir := filepath.Join(tempDir, "hero-002")
	if err := CopyDir(srcDir, dstDir); err != nil {
		t.Fatalf("CopyDir(%q, %q) failed: %v", srcDir, dstDir, err)
	}

	if got, _ := ReadFileOrEmpty(filepath.Join(dstDir, "meta.json")); got != `{"id":"hero-001"}` {
		t.Errorf("copied meta.json = %q", got)
	}
	if got, _ := ReadFileOrEmpty(filepath.Join(dstDir, "assets", "style.css")); got != "h1{}" {
		t.Errorf("copied assets/style.css = %q", got)
	}

	if err := CopyDir(filepath.Join(tempDir, "missing"), filepath.Join(tempDir, "out")); err == nil {
		t.Errorf("CopyDir succeeded for non-existent source, expected error")
	}
	if err := CopyDir(filepath.Join(srcDir, "meta.json"), filepath.Join(tempDir, "out2")); err == nil {
		t.Errorf("CopyDir succeeded when source is a file, expected error")
	}
}
