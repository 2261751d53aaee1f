package location

import "testing"

const (
	encodedSample = "BlahBlahBlah%3B%20BlahBlahBlahBlah%3B%20BlahBlahBlahBlahBlah.mp3"
	decodedSample = "BlahBlahBlah; BlahBlahBlahBlah; BlahBlahBlahBlahBlah.mp3"
)

func TestDecode_Semicolons(t *testing.T) {
	if got := Decode(encodedSample); got != decodedSample {
		t.Errorf("Decode = %q, want %q", got, decodedSample)
	}
}

func TestEncode_Semicolons(t *testing.T) {
	if got := Encode(decodedSample); got != encodedSample {
		t.Errorf("Encode = %q, want %q", got, encodedSample)
	}
}

func TestRoundTrip_Sample(t *testing.T) {
	if got := Encode(Decode(encodedSample)); got != encodedSample {
		t.Errorf("round trip = %q, want %q", got, encodedSample)
	}
}

func TestRoundTrip_SpecialCharacters(t *testing.T) {
	cases := []string{
		"file:///Users/me/Music/Artist/Album%20%23%201/01%20What%3F%3B%20Yes.mp3",
		"file:///Volumes/Media/100%25%20Hits/track.m4a",
		"file:///Users/me/Music/Bj%C3%B6rk/Hom%C3%A9genic/Joga.mp3",
	}
	for _, c := range cases {
		if got := Encode(Decode(c)); got != c {
			t.Errorf("round trip of %q = %q", c, got)
		}
	}
}

func TestDecode_FilePrefix(t *testing.T) {
	got := Decode("file:///Users/me/Music/My%20Song%23.mp3")
	want := "/Users/me/Music/My Song#.mp3"
	if got != want {
		t.Errorf("Decode = %q, want %q", got, want)
	}
}

func TestEncode_FilePrefix(t *testing.T) {
	got := Encode("/Users/me/Music/My Song?.mp3")
	want := "file:///Users/me/Music/My%20Song%3F.mp3"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestURLsPassThrough(t *testing.T) {
	u := "http://example.com/stream%20one?x=1#frag"
	if got := Decode(u); got != u {
		t.Errorf("Decode changed URL: %q", got)
	}
	if got := Encode(u); got != u {
		t.Errorf("Encode changed URL: %q", got)
	}
	if !IsURL("https://example.com") {
		t.Error("https should be a URL")
	}
	if IsURL("file:///a.mp3") {
		t.Error("file location should not be a URL")
	}
}

func TestDecode_MalformedEscapesKept(t *testing.T) {
	got := Decode("file:///a%2/b%ZZ/c%E2%82.mp3")
	want := "/a%2/b%ZZ/c%E2%82.mp3"
	if got != want {
		t.Errorf("Decode = %q, want %q", got, want)
	}
}

func TestDecode_ReservedEscapesKept(t *testing.T) {
	// %2F is reserved; only the special escapes are turned back into characters.
	got := Decode("file:///a%2Fb%3Fc.mp3")
	want := "/a%2Fb?c.mp3"
	if got != want {
		t.Errorf("Decode = %q, want %q", got, want)
	}
}
