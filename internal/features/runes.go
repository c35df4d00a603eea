package features

import "unicode/utf8"

// nextRune decodes the first rune of s and returns it along with its byte
// width, using the replacement rune for invalid UTF-8 (matching the
// standard library's usual decode-and-skip convention).
func nextRune(s string) (rune, int) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		size = 1
	}
	return r, size
}
