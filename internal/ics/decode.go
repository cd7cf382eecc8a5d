package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncodings is the fallback chain used when none is configured.
var DefaultEncodings = []string{"utf-8", "latin-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns raw calendar bytes into text, trying each encoding in order.
// A UTF-8 or UTF-16 byte order mark wins over the configured chain.
// Input that still contains NUL bytes after decoding is rejected: it is
// binary, whatever single-byte charset would accept it.
func Decode(src Source, body []byte, encodings []string) (string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	if bytes.HasPrefix(body, utf8BOM) {
		return checkText(src, encodings, string(body[len(utf8BOM):]))
	}
	if len(body) >= 2 && ((body[0] == 0xFF && body[1] == 0xFE) || (body[0] == 0xFE && body[1] == 0xFF)) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(body)
		if err != nil {
			return "", &DecodeError{Source: src, Encodings: []string{"utf-16"}, Err: err}
		}
		return checkText(src, encodings, string(out))
	}

	var lastErr error
	for _, name := range encodings {
		text, err := decodeWith(name, body)
		if err != nil {
			lastErr = err
			continue
		}
		return checkText(src, encodings, text)
	}
	if lastErr == nil {
		lastErr = errors.New("no encoding accepted the input")
	}
	return "", &DecodeError{Source: src, Encodings: encodings, Err: lastErr}
}

func checkText(src Source, encodings []string, text string) (string, error) {
	if strings.ContainsRune(text, 0) {
		return "", &DecodeError{Source: src, Encodings: encodings, Err: errors.New("input contains NUL bytes")}
	}
	return text, nil
}

func decodeWith(name string, body []byte) (string, error) {
	switch normalizeEncodingName(name) {
	case "utf8":
		if !utf8.Valid(body) {
			return "", errors.New("invalid utf-8")
		}
		return string(body), nil
	default:
		enc, err := lookupEncoding(name)
		if err != nil {
			return "", err
		}
		out, err := enc.NewDecoder().Bytes(body)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return string(out), nil
	}
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch normalizeEncodingName(name) {
	case "latin1", "iso88591":
		return charmap.ISO8859_1, nil
	case "iso885915", "latin9":
		return charmap.ISO8859_15, nil
	case "windows1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func normalizeEncodingName(name string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(name)))
}
