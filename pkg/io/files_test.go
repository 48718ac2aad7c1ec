package io

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func statPerm(t *testing.T, path string) fs.FileMode {
	t.Helper()
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("%s is not created: %v", path, err)
	}
	return st.Mode().Perm()
}

func TestCreateAll(t *testing.T) {

	t.Run("it creates missing parent directories", func(t *testing.T) {
		// umask would strip the mode bits asserted below
		oldUmask := syscall.Umask(0)
		defer syscall.Umask(oldUmask)

		root := t.TempDir()
		target := filepath.Join(root, "schema", "versions", "00.sql")

		f, err := CreateAll(target, 0600, 0750)
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		f.Close()

		for _, dir := range []string{
			filepath.Join(root, "schema"),
			filepath.Join(root, "schema", "versions"),
		} {
			if got := statPerm(t, dir); got != 0750 {
				t.Errorf("unmatch mode of %s: (actual, expected) = (%v, %v)", dir, got, fs.FileMode(0750))
			}
		}
		if got := statPerm(t, target); got != 0600 {
			t.Errorf("unmatch file mode: (actual, expected) = (%v, %v)", got, fs.FileMode(0600))
		}
	})

	t.Run("it does not change the mode of directories which exist", func(t *testing.T) {
		oldUmask := syscall.Umask(0)
		defer syscall.Umask(oldUmask)

		root := t.TempDir()
		dir := filepath.Join(root, "schema")
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal("fail to arrange directory:", err)
		}

		f, err := CreateAll(filepath.Join(dir, "00.sql"), 0600, 0700)
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		f.Close()

		if got := statPerm(t, dir); got != 0755 {
			t.Errorf("unmatch mode of %s: (actual, expected) = (%v, %v)", dir, got, fs.FileMode(0755))
		}
	})

	t.Run("it truncates a file which exists", func(t *testing.T) {
		root := t.TempDir()
		target := filepath.Join(root, "00.sql")
		if err := os.WriteFile(target, []byte("drop table hub;"), 0644); err != nil {
			t.Fatal("fail to arrange file:", err)
		}

		f, err := CreateAll(target, 0644, 0755)
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		f.Close()

		content, err := os.ReadFile(target)
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		if len(content) != 0 {
			t.Errorf("file is not truncated: %q", string(content))
		}
	})
}

func TestDirCopy(t *testing.T) {

	t.Run("it copies a directory tree", func(t *testing.T) {
		source, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(source)

		if err := os.MkdirAll(filepath.Join(source, "1"), 0755); err != nil {
			t.Fatal("fail to arrange source tree.", err)
		}
		for name, content := range map[string]string{
			filepath.Join(source, "1", "00.sql"): "create table if not exists example (name varchar(255));",
			filepath.Join(source, "1", "01.sql"): "insert into example (name) values ('x');",
		} {
			if err := os.WriteFile(name, []byte(content), 0644); err != nil {
				t.Fatal("fail to arrange source tree.", err)
			}
		}

		dest, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(dest)
		dest = filepath.Join(dest, "copied")

		if err := DirCopy(source, dest); err != nil {
			t.Fatal("unexpected error:", err)
		}

		for name, content := range map[string]string{
			filepath.Join(dest, "1", "00.sql"): "create table if not exists example (name varchar(255));",
			filepath.Join(dest, "1", "01.sql"): "insert into example (name) values ('x');",
		} {
			actual, err := os.ReadFile(name)
			if err != nil {
				t.Fatal("copied file cannot be read:", err)
			}
			if string(actual) != content {
				t.Errorf(
					"copied content is wrong. (actual, expected) = (%s, %s)",
					string(actual), content,
				)
			}
		}
	})

	t.Run("it fails for a missing source", func(t *testing.T) {
		dest, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(dest)

		if err := DirCopy(filepath.Join(dest, "no-such-dir"), filepath.Join(dest, "out")); err == nil {
			t.Error("DirCopy against a missing source should fail")
		}
	})
}
