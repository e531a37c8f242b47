package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// LinkCodeLen is the length in hex digits of a Telegram link code.
const LinkCodeLen = 32

func RandomHex(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewLinkCode returns 32 upper-case hex digits.
func NewLinkCode() (string, error) {
	s, err := RandomHex(LinkCodeLen / 2)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(s), nil
}

// NormalizeLinkCode strips quoting and punctuation pasted around a code and
// keeps only hex digits. ok is false unless exactly LinkCodeLen remain.
func NormalizeLinkCode(s string) (code string, ok bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`“”«»<>.,;:()[]{}\\")
	s = strings.ToUpper(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Hex_Digit, r) {
			b.WriteRune(r)
		}
	}
	code = b.String()
	if len(code) != LinkCodeLen {
		return "", false
	}
	return code, true
}
