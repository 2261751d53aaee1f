// Package location converts track locations between the escaped form stored
// in a library file and the plain file-system path form.
//
// Decode and Encode are not mirror images of each other. Decode undoes the
// special escapes after URI-decoding; Encode URI-escapes first and then applies
// the special escapes, with the semicolon pass always last. That order is what
// makes Encode(Decode(x)) reproduce locations written by the library owner.
package location

import (
	"strings"
	"unicode/utf8"
)

const (
	fileURLPrefix = "file:///"
	urlPrefix     = "http"
	upperHex      = "0123456789ABCDEF"
)

// IsURL reports whether loc points at a remote resource rather than a file.
func IsURL(loc string) bool {
	return strings.HasPrefix(loc, urlPrefix)
}

// Decode turns a stored location into a plain path. URLs are returned as is.
func Decode(loc string) string {
	if IsURL(loc) {
		return loc
	}

	decoded := decodeURI(loc)
	decoded = strings.ReplaceAll(decoded, "%23", "#")
	decoded = strings.ReplaceAll(decoded, "%3B", ";")
	if strings.HasPrefix(decoded, fileURLPrefix) {
		decoded = "/" + decoded[len(fileURLPrefix):]
	}
	return strings.ReplaceAll(decoded, "%3F", "?")
}

// Encode turns a plain path into the stored location form. URLs are returned as is.
func Encode(path string) string {
	if IsURL(path) {
		return path
	}

	encoded := encodeURI(path)
	encoded = strings.ReplaceAll(encoded, "?", "%3F")
	if strings.HasPrefix(encoded, "/") {
		encoded = fileURLPrefix + encoded[1:]
	}
	encoded = strings.ReplaceAll(encoded, "#", "%23")
	return strings.ReplaceAll(encoded, ";", "%3B")
}

// uriUnescaped is the set of ASCII characters encodeURI leaves alone.
func uriUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) >= 0
}

// uriReserved escapes survive decodeURI untouched.
func uriReserved(c byte) bool {
	return strings.IndexByte(";/?:@&=+$,#", c) >= 0
}

func encodeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

// decodeURI unescapes %XX sequences except those that stand for reserved
// characters. Malformed or non-UTF-8 sequences are kept literally.
func decodeURI(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c, ok := hexByteAt(s, i)
		if !ok {
			b.WriteByte(s[i])
			i++
			continue
		}

		if c < utf8.RuneSelf {
			if uriReserved(c) {
				b.WriteString(s[i : i+3])
			} else {
				b.WriteByte(c)
			}
			i += 3
			continue
		}

		n := utf8SequenceLength(c)
		buf := make([]byte, 0, 4)
		buf = append(buf, c)
		j := i + 3
		for len(buf) < n {
			next, ok := hexByteAt(s, j)
			if !ok {
				break
			}
			buf = append(buf, next)
			j += 3
		}
		if n > 0 && len(buf) == n && utf8.Valid(buf) {
			b.Write(buf)
			i = j
			continue
		}
		b.WriteString(s[i : i+3])
		i += 3
	}
	return b.String()
}

func hexByteAt(s string, i int) (byte, bool) {
	if i+2 >= len(s) || s[i] != '%' {
		return 0, false
	}
	hi, ok1 := unhex(s[i+1])
	lo, ok2 := unhex(s[i+2])
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi<<4 | lo, true
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func utf8SequenceLength(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	}
	return 0
}
