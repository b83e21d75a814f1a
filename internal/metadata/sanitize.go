package metadata

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

var (
	leadingJunkExpr   = regexp.MustCompile(`^[\x00-\x20\x{FEFF}]+`)
	cdataExpr         = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*)\]\]>\s*$`)
	fenceExpr         = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*(.*?)\\s*```\\s*$")
	blockCommentExpr  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentExpr   = regexp.MustCompile(`(?m)(^|[\s\{\[,])//.*$`)
	trailingCommaExpr = regexp.MustCompile(`,\s*([}\]])`)

	smartQuotes = strings.NewReplacer(
		"“", `"`, // left double
		"”", `"`, // right double
		"‘", "'", // left single
		"’", "'", // right single
	)
)

// Sanitize applies the repair pass to a near-JSON payload: re-encode to
// UTF-8, strip BOMs, normalize line endings, unwrap CDATA and fenced code
// blocks, drop comments, straighten smart quotes and remove trailing commas.
func Sanitize(raw []byte) []byte {
	raw = toUTF8(raw)
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	raw = normalizeLineEndings(raw)
	raw = leadingJunkExpr.ReplaceAll(raw, nil)

	if m := cdataExpr.FindSubmatch(raw); m != nil {
		raw = m[1]
	}
	if m := fenceExpr.FindSubmatch(raw); m != nil {
		raw = m[1]
	}

	// Line comments are only removed at line start or after a structural
	// character. A literal "//" inside a string value can still be
	// clipped in unlucky positions; known limitation.
	if bytes.Contains(raw, []byte("//")) || bytes.Contains(raw, []byte("/*")) {
		raw = blockCommentExpr.ReplaceAll(raw, nil)
		raw = lineCommentExpr.ReplaceAll(raw, []byte("$1"))
	}

	raw = []byte(smartQuotes.Replace(string(raw)))
	raw = trailingCommaExpr.ReplaceAll(raw, []byte("$1"))

	return bytes.TrimSpace(raw)
}

// extractObject narrows the payload to the span between the first "{" and
// the last "}", for metadata wrapped in explanatory prose or stray tokens.
// Input without a complete brace pair is returned unchanged.
func extractObject(raw []byte) []byte {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

func normalizeLineEndings(raw []byte) []byte {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(raw, []byte("\r"), []byte("\n"))
}

// toUTF8 converts the payload to UTF-8 when the source encoding can be
// confidently identified: UTF-16/32 by BOM, then by NUL-byte layout for
// BOM-less files, then Windows-1252 as the legacy fallback for byte streams
// that are not valid UTF-8. Valid UTF-8 passes through untouched.
func toUTF8(raw []byte) []byte {
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return decodeWith(utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), raw)
	case bytes.HasPrefix(raw, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return decodeWith(utf32.UTF32(utf32.BigEndian, utf32.UseBOM), raw)
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), raw)
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), raw)
	case utf8.Valid(raw):
		return raw
	case len(raw) >= 2 && raw[0] != 0x00 && raw[1] == 0x00:
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), raw)
	case len(raw) >= 2 && raw[0] == 0x00 && raw[1] != 0x00:
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), raw)
	default:
		return decodeWith(charmap.Windows1252, raw)
	}
}

func decodeWith(enc encoding.Encoding, raw []byte) []byte {
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return decoded
}
