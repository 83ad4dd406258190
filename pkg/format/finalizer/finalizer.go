/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package finalizer

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const (
	LF   = "\n"
	CRLF = "\r\n"
)

// DetectLineEnding returns the dominant line ending of content, defaulting to LF.
func DetectLineEnding(content string) string {
	crlfCount := strings.Count(content, CRLF)
	lfCount := strings.Count(content, LF) - crlfCount

	if crlfCount > lfCount {
		return CRLF
	}
	return LF
}

// GetBOMInfo returns information about a detected byte order mark
func GetBOMInfo(input []byte) (encoding string, bomSize int, found bool) {
	switch {
	case bytes.HasPrefix(input, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return "UTF-32BE", 4, true
	case bytes.HasPrefix(input, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return "UTF-32LE", 4, true
	case bytes.HasPrefix(input, []byte{0xEF, 0xBB, 0xBF}):
		return "UTF-8", 3, true
	case bytes.HasPrefix(input, []byte{0xFE, 0xFF}):
		return "UTF-16BE", 2, true
	case bytes.HasPrefix(input, []byte{0xFF, 0xFE}):
		return "UTF-16LE", 2, true
	}
	return "", 0, false
}

// IsProcessableText reports whether content looks like text a line rewriter can safely touch.
// Generated sources are UTF-8; anything with a non UTF-8 BOM, a NUL byte or invalid UTF-8 is left alone.
func IsProcessableText(content []byte) bool {
	if len(content) == 0 {
		return true
	}

	encoding, size, found := GetBOMInfo(content)
	if found {
		if encoding != "UTF-8" {
			return false
		}
		content = content[size:]
	}

	if bytes.IndexByte(content, 0) >= 0 {
		return false
	}
	return utf8.Valid(content)
}
