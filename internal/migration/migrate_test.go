package migration

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/electrovir/itunes-library-migration-assistant/internal/apperr"
	"github.com/electrovir/itunes-library-migration-assistant/internal/models"
	"github.com/electrovir/itunes-library-migration-assistant/internal/testutil"
)

func migrate(t *testing.T, lib *models.Library, rules []Rule, opts Options) (*Result, error) {
	t.Helper()
	return Migrate(context.Background(), lib, rules, opts)
}

func TestMigrate_NoOpKeepsLibrary(t *testing.T) {
	lib := testutil.DummyLibrary()
	rules := []Rule{ReplaceRule("/sample/", "/sample/")}

	res, err := migrate(t, lib, rules, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !reflect.DeepEqual(res.Library, lib) {
		t.Errorf("no-op migration changed the library:\n got %#v\nwant %#v", res.Library, lib)
	}
	if res.Library == lib {
		t.Error("Migrate returned the input library instead of a copy")
	}
}

func TestMigrate_SingleSubstitution(t *testing.T) {
	lib := testutil.DummyLibrary()
	rules := []Rule{ReplaceRule("file:///sample/", "file:///new/")}

	res, err := migrate(t, lib, rules, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	got, _ := res.Library.Tracks["0"].Location()
	if got != "file:///new/path.mp3" {
		t.Errorf("Location = %q", got)
	}
	if orig, _ := lib.Tracks["0"].Location(); orig != "file:///sample/path.mp3" {
		t.Errorf("input track was mutated: %q", orig)
	}
	if res.Diagnostics.Usage[0] != 1 || res.Diagnostics.Replaced != 1 {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestMigrate_OnlyFirstOccurrenceReplaced(t *testing.T) {
	lib := testutil.DummyLibrary()
	lib.Tracks["0"] = testutil.DummyTrack(0, "file:///a/a/a.mp3")

	res, err := migrate(t, lib, []Rule{ReplaceRule("/a", "/b")}, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if got, _ := res.Library.Tracks["0"].Location(); got != "file:///b/a/a.mp3" {
		t.Errorf("Location = %q", got)
	}
}

func TestMigrate_FirstMatchingRuleWins(t *testing.T) {
	lib := testutil.DummyLibrary()
	rules := []Rule{
		ReplaceRule("/sample/", "/first/"),
		ReplaceRule("/sample/path", "/second/path"),
	}

	res, err := migrate(t, lib, rules, Options{})
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if got, _ := res.Library.Tracks["0"].Location(); got != "file:///first/path.mp3" {
		t.Errorf("Location = %q", got)
	}
	if !reflect.DeepEqual(res.Diagnostics.Usage, []int{1, 0}) {
		t.Errorf("Usage = %v", res.Diagnostics.Usage)
	}
}

func TestMigrate_DecodedFallback(t *testing.T) {
	lib := testutil.SampleLibrary()
	rules := []Rule{
		ReplaceRule("/Users/me/Music/iTunes/iTunes Media/Music/Band/Album #1/", "/Volumes/Media/Band; Live/"),
		ReplaceRule("/Users/me/Music/iTunes/iTunes Media/Music/", "/Volumes/Media/"),
	}

	res, err := migrate(t, lib, rules, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	got, _ := res.Library.Tracks["102"].Location()
	want := "file:///Volumes/Media/Band%3B%20Live/Semicolon%3B%20Song.m4a"
	if got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestMigrate_NormalizationFallback(t *testing.T) {
	lib := testutil.SampleLibrary()
	// The rule spells Björk precomposed while the stored location is decomposed.
	rules := []Rule{
		ReplaceRule("/Users/me/Music/iTunes/iTunes Media/Music/Björk/", "/Volumes/Media/Björk/"),
		ReplaceRule("/Users/me/Music/", "/Volumes/"),
	}

	res, err := migrate(t, lib, rules, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	got, _ := res.Library.Tracks["101"].Location()
	want := "file:///Volumes/Media/Bj%C3%B6rk/Homogenic/02%20J%C3%B3ga.mp3"
	if got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
	if res.Diagnostics.Usage[0] != 1 {
		t.Errorf("Usage = %v", res.Diagnostics.Usage)
	}
}

func TestMigrate_DeleteRemovesTrack(t *testing.T) {
	lib := testutil.DummyLibrary()
	lib.Tracks["1"] = testutil.DummyTrack(1, "file:///keep/me.mp3")
	rules := []Rule{
		DeleteRule("/sample/"),
		ReplaceRule("/keep/", "/kept/"),
	}

	res, err := migrate(t, lib, rules, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, ok := res.Library.Tracks["0"]; ok {
		t.Error("deleted track is still present")
	}
	if _, ok := lib.Tracks["0"]; !ok {
		t.Error("input library lost the deleted track")
	}
	if len(res.Library.Tracks) != 1 {
		t.Errorf("got %d tracks, want 1", len(res.Library.Tracks))
	}
	if !reflect.DeepEqual(res.Diagnostics.Deleted, []string{"0"}) {
		t.Errorf("Deleted = %v", res.Diagnostics.Deleted)
	}
}

func TestMigrate_UnusedRuleReported(t *testing.T) {
	lib := testutil.DummyLibrary()
	rules := []Rule{
		ReplaceRule("/sample/", "/new/"),
		ReplaceRule("gibberish not a real path", "/nowhere/"),
	}

	res, err := migrate(t, lib, rules, DefaultOptions())
	if err == nil {
		t.Fatal("expected migration error")
	}
	if !errors.Is(err, apperr.ErrMigration) {
		t.Errorf("error does not match ErrMigration: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(err.Error()), "The following replacement was never used") {
		t.Errorf("unexpected error text: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "gibberish not a real path") {
		t.Errorf("error does not name the rule: %q", err.Error())
	}
	if res == nil || len(res.Diagnostics.UnusedRules(rules)) != 1 {
		t.Errorf("result diagnostics missing the unused rule: %+v", res)
	}
}

func TestMigrate_UnreplacedReported(t *testing.T) {
	lib := testutil.DummyLibrary()
	lib.Tracks["1"] = testutil.DummyTrack(1, "file:///other/a.mp3")
	lib.Tracks["2"] = testutil.DummyTrack(2, "file:///other/a.mp3")

	_, err := migrate(t, lib, []Rule{ReplaceRule("/sample/", "/new/")}, DefaultOptions())
	if err == nil {
		t.Fatal("expected migration error")
	}
	msg := err.Error()
	if n := strings.Count(msg, "This track location was not replaced:"); n != 1 {
		t.Errorf("unreplaced location reported %d times:\n%s", n, msg)
	}
	if !strings.Contains(msg, "file:///other/a.mp3") {
		t.Errorf("message missing location:\n%s", msg)
	}
}

func TestMigrate_ChecksDisabled(t *testing.T) {
	lib := testutil.DummyLibrary()
	lib.Tracks["1"] = testutil.DummyTrack(1, "file:///other/a.mp3")
	rules := []Rule{ReplaceRule("nothing matches this", "x")}

	res, err := migrate(t, lib, rules, Options{})
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if len(res.Diagnostics.Unreplaced) != 2 {
		t.Errorf("Unreplaced = %v", res.Diagnostics.Unreplaced)
	}
}

func TestMigrate_TracksWithoutLocationKept(t *testing.T) {
	lib := testutil.DummyLibrary()
	lib.Tracks["5"] = testutil.DummyTrack(5, "")

	res, err := migrate(t, lib, []Rule{ReplaceRule("/sample/", "/new/")}, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !reflect.DeepEqual(res.Library.Tracks["5"], lib.Tracks["5"]) {
		t.Errorf("track without location changed: %v", res.Library.Tracks["5"])
	}
}

func TestMigrate_URLsUntouchedByDecodeFallback(t *testing.T) {
	lib := testutil.DummyLibrary()
	lib.Tracks["1"] = testutil.DummyTrack(1, "http://example.com/a%20b.mp3")
	rules := []Rule{
		ReplaceRule("/sample/", "/new/"),
		ReplaceRule("example.com", "example.org"),
	}

	res, err := migrate(t, lib, rules, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if got, _ := res.Library.Tracks["1"].Location(); got != "http://example.org/a%20b.mp3" {
		t.Errorf("Location = %q", got)
	}
}

func TestMigrate_MissingFiles(t *testing.T) {
	lib := testutil.DummyLibrary()
	lib.Tracks["1"] = testutil.DummyTrack(1, "file:///sample/there%20it%20is.mp3")
	files := testutil.FakeFiles{"/new/there it is.mp3": true}

	opts := DefaultOptions()
	opts.CheckFiles = true
	opts.Files = files

	res, err := migrate(t, lib, []Rule{ReplaceRule("/sample/", "/new/")}, opts)
	if err == nil {
		t.Fatal("expected missing file error")
	}
	want := []MissingFile{{Old: "/sample/path.mp3", New: "/new/path.mp3"}}
	if !reflect.DeepEqual(res.Diagnostics.MissingFiles, want) {
		t.Errorf("MissingFiles = %+v, want %+v", res.Diagnostics.MissingFiles, want)
	}
	if !strings.Contains(err.Error(), "Missing file:\n\t\t\told: /sample/path.mp3\n\t\t\tnew: /new/path.mp3") {
		t.Errorf("unexpected error text: %q", err.Error())
	}
}

func TestMigrate_MissingFilesReportedWithoutPathChecks(t *testing.T) {
	lib := testutil.DummyLibrary()
	opts := Options{CheckFiles: true, Files: testutil.FakeFiles{}}

	_, err := migrate(t, lib, []Rule{ReplaceRule("/sample/", "/new/")}, opts)
	if !errors.Is(err, apperr.ErrMigration) {
		t.Fatalf("err = %v, want ErrMigration", err)
	}
}

func TestMigrate_MissingFilesKeepTrackOrder(t *testing.T) {
	lib := testutil.DummyLibrary()
	for i := int64(1); i <= 30; i++ {
		lib.Tracks[strconv.FormatInt(i, 10)] = testutil.DummyTrack(i, "file:///sample/"+strconv.FormatInt(i, 10)+".mp3")
	}
	opts := Options{CheckFiles: true, Files: testutil.FakeFiles{}, Concurrency: 4}

	res, _ := migrate(t, lib, []Rule{ReplaceRule("/sample/", "/new/")}, opts)
	if len(res.Diagnostics.MissingFiles) != 31 {
		t.Fatalf("got %d missing files, want 31", len(res.Diagnostics.MissingFiles))
	}
	if res.Diagnostics.MissingFiles[0].New != "/new/path.mp3" {
		t.Errorf("first missing = %+v", res.Diagnostics.MissingFiles[0])
	}
	for i := 1; i <= 30; i++ {
		if got, want := res.Diagnostics.MissingFiles[i].New, "/new/"+strconv.Itoa(i)+".mp3"; got != want {
			t.Errorf("missing[%d] = %q, want %q", i, got, want)
		}
	}
}

type failingFiles struct{ calls atomic.Int32 }

func (f *failingFiles) Exists(string) (bool, error) {
	f.calls.Add(1)
	return false, errors.New("permission denied")
}

func TestMigrate_FileCheckErrorAborts(t *testing.T) {
	opts := Options{CheckFiles: true, Files: &failingFiles{}}
	res, err := migrate(t, testutil.DummyLibrary(), []Rule{ReplaceRule("/sample/", "/new/")}, opts)
	if err == nil || res != nil {
		t.Fatalf("res = %v, err = %v", res, err)
	}
	if errors.Is(err, apperr.ErrMigration) {
		t.Errorf("checker failure should not be reported as a migration diagnostic: %v", err)
	}
}

func TestMigrate_ExtraTrackProcessing(t *testing.T) {
	lib := testutil.DummyLibrary()
	opts := DefaultOptions()
	var seen string
	opts.ExtraTrackProcessing = func(tr models.Track) models.Track {
		seen, _ = tr.Location()
		tr["Comments"] = "migrated"
		return tr
	}

	res, err := migrate(t, lib, []Rule{ReplaceRule("/sample/", "/new/")}, opts)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if seen != "file:///new/path.mp3" {
		t.Errorf("hook saw location %q, want the rewritten one", seen)
	}
	if res.Library.Tracks["0"]["Comments"] != "migrated" {
		t.Error("hook result not stored")
	}
	if _, ok := lib.Tracks["0"]["Comments"]; ok {
		t.Error("hook mutated the input track")
	}
}

func TestMigrate_NilRuleIsMalformed(t *testing.T) {
	_, err := migrate(t, testutil.DummyLibrary(), []Rule{nil}, DefaultOptions())
	if !errors.Is(err, apperr.ErrMalformedRule) {
		t.Fatalf("err = %v, want ErrMalformedRule", err)
	}
}

func TestMigrate_IncompleteRulesAreMalformed(t *testing.T) {
	cases := map[string]Rule{
		"empty new":     Replace{Old: "sample/"},
		"empty old":     Replace{New: "/new/"},
		"empty delete":  Delete{},
		"pointer value": &Replace{Old: "/sample/", New: "/new/"},
	}
	for name, rule := range cases {
		t.Run(name, func(t *testing.T) {
			lib := testutil.DummyLibrary()
			res, err := migrate(t, lib, []Rule{ReplaceRule("/other/", "/x/"), rule}, Options{})
			if !errors.Is(err, apperr.ErrMalformedRule) {
				t.Fatalf("err = %v, want ErrMalformedRule", err)
			}
			if res != nil {
				t.Errorf("malformed rule produced a result: %+v", res)
			}
			if !strings.Contains(err.Error(), "rule 1") || !strings.Contains(err.Error(), malformedRuleText) {
				t.Errorf("err = %q", err)
			}
		})
	}
}

func TestMigrate_NoRulesWithoutChecksKeepsLibrary(t *testing.T) {
	lib := testutil.SampleLibrary()

	res, err := migrate(t, lib, nil, Options{})
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !reflect.DeepEqual(res.Library, lib) {
		t.Errorf("migration without rules changed the library:\n got %#v\nwant %#v", res.Library, lib)
	}
}

func TestMigrate_IdentityRuleKeepsEscaping(t *testing.T) {
	lib := testutil.DummyLibrary()
	// Lower-case escapes are not what Encode produces.
	lib.Tracks["0"] = testutil.DummyTrack(0, "file:///sample/caf%c3%a9.mp3")

	res, err := migrate(t, lib, []Rule{ReplaceRule("/sample/", "/sample/")}, Options{})
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if got, _ := res.Library.Tracks["0"].Location(); got != "file:///sample/caf%c3%a9.mp3" {
		t.Errorf("Location = %q, want it unchanged", got)
	}
}

func TestMigrate_URLsNotMatchedThroughNormalization(t *testing.T) {
	lib := testutil.DummyLibrary()
	lib.Tracks["1"] = testutil.DummyTrack(1, "http://example.com/Bjo\u0308rk.mp3")
	rules := []Rule{
		ReplaceRule("/sample/", "/new/"),
		ReplaceRule("Björk", "Bjork"),
	}

	res, err := migrate(t, lib, rules, Options{})
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if res.Diagnostics.Usage[1] != 0 {
		t.Errorf("Usage = %v, want the URL rule unused", res.Diagnostics.Usage)
	}
	if len(res.Diagnostics.Unreplaced) != 1 || res.Diagnostics.Unreplaced[0] != "http://example.com/Bjo\u0308rk.mp3" {
		t.Errorf("Unreplaced = %q", res.Diagnostics.Unreplaced)
	}
}

func TestMigrate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Migrate(ctx, testutil.DummyLibrary(), []Rule{ReplaceRule("/sample/", "/new/")}, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMigrate_PlaylistsShared(t *testing.T) {
	lib := testutil.SampleLibrary()
	rules := []Rule{ReplaceRule("/Users/me/Music/", "/Volumes/")}

	res, err := migrate(t, lib, rules, DefaultOptions())
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !reflect.DeepEqual(res.Library.Playlists, lib.Playlists) {
		t.Error("playlists changed")
	}
	if res.Library.MusicFolder != lib.MusicFolder {
		t.Error("metadata changed")
	}
}
