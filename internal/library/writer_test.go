package library

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/electrovir/itunes-library-migration-assistant/internal/apperr"
	"github.com/electrovir/itunes-library-migration-assistant/internal/storage"
	"github.com/electrovir/itunes-library-migration-assistant/internal/testutil"
)

func TestMigratedPath(t *testing.T) {
	cases := map[string]string{
		"/music/Library.xml":         "/music/Library.migrated.xml",
		"Library.xml":                "Library.migrated.xml",
		"/music/xml.dir/Library.xml": "/music/xml.dir/Library.migrated.xml",
		"/music/Library":             "/music/Library.migrated",
	}
	for in, want := range cases {
		if got := MigratedPath(in); got != want {
			t.Errorf("MigratedPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmit_JSONObjectReturnsLibrary(t *testing.T) {
	lib := testutil.DummyLibrary()
	out, err := Emit(lib, JSONObject, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if out.Library != lib {
		t.Error("json-object output should return the same library")
	}
}

func TestEmit_PlistStringCanBeReadAgain(t *testing.T) {
	lib := testutil.DummyLibrary()
	out, err := Emit(lib, PlistString, EmitOptions{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if out.Checksum != storage.Checksum([]byte(out.Plist)) {
		t.Errorf("Checksum = %q does not match the plist", out.Checksum)
	}
	reread, err := ReadString(out.Plist, DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if !reread.Date.Equal(lib.Date) || len(reread.Tracks) != 1 {
		t.Errorf("re-read library differs: %+v", reread)
	}
	loc, _ := reread.Tracks["0"].Location()
	if loc != "file:///sample/path.mp3" {
		t.Errorf("location = %q", loc)
	}
}

func TestEmit_WriteToFileLeavesOriginalUntouched(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteLibrary(t, dir, "Library.xml", testutil.SampleLibrary())
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(original, past, past); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(original)

	out, err := Emit(testutil.DummyLibrary(), WriteToFile, EmitOptions{LibraryPath: original})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if out.FilePath != filepath.Join(dir, "Library.migrated.xml") {
		t.Errorf("FilePath = %q", out.FilePath)
	}
	if _, err := os.Stat(out.FilePath); err != nil {
		t.Fatalf("output file not created: %v", err)
	}

	info, err := os.Stat(original)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(past) {
		t.Errorf("original mtime changed: %v", info.ModTime())
	}
	after, _ := os.ReadFile(original)
	if !reflect.DeepEqual(before, after) {
		t.Error("original content changed")
	}
}

func TestEmit_UnsupportedKind(t *testing.T) {
	_, err := Emit(testutil.DummyLibrary(), OutputKind("yaml"), EmitOptions{})
	if !errors.Is(err, apperr.ErrUnsupportedOutput) {
		t.Fatalf("err = %v, want ErrUnsupportedOutput", err)
	}
}

func TestParseOutputKind(t *testing.T) {
	for _, k := range OutputKinds {
		got, err := ParseOutputKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseOutputKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseOutputKind("csv"); !errors.Is(err, apperr.ErrUnsupportedOutput) {
		t.Errorf("csv accepted: %v", err)
	}
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(testutil.DummyLibrary())
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !jsonContains(data, `"Location": "file:///sample/path.mp3"`) {
		t.Errorf("json output missing location: %s", data)
	}
}

func jsonContains(data []byte, s string) bool {
	return strings.Contains(string(data), s)
}
