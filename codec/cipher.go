package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// The text layer: raw bytes -> URL-safe base64 (no padding) -> per
// character substitution plus a position-dependent shift. Both tables
// are fixed constants recovered from the game client; changing a single
// entry breaks compatibility with every existing share code.

// formatMarker leads every cipher body, ahead of the key character.
const formatMarker = 'a'

const (
	// cipherAlphabet lists the 64 characters a share code may contain,
	// in value order. Note '+' and '-' instead of base64's '-' and '_'.
	cipherAlphabet = "+-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// cipherToStdAlphabet[i] is the standard URL-safe base64 character
	// that cipherAlphabet[i] substitutes for.
	cipherToStdAlphabet = "NPxg0K8SJ2sZDFtT6EaVcpLMmej9XB4RY7_nObi-vHCArWodIqhUlk3fy5Gw1uzQ"
)

var (
	subToStd [128]byte // cipher char -> standard base64 char, 0 = invalid
	stdToSub [128]byte // standard base64 char -> cipher char, 0 = invalid
)

func init() {
	for i := 0; i < len(cipherAlphabet); i++ {
		subToStd[cipherAlphabet[i]] = cipherToStdAlphabet[i]
		stdToSub[cipherToStdAlphabet[i]] = cipherAlphabet[i]
	}
}

// stdValue 标准URL-safe字母表的6bit值。Returns -1 for foreign bytes.
func stdValue(c byte) int {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 26
	case c >= '0' && c <= '9':
		return int(c-'0') + 52
	case c == '-':
		return 62
	case c == '_':
		return 63
	}
	return -1
}

func stdChar(v int) byte {
	v &= 63
	switch {
	case v < 26:
		return byte(v) + 'A'
	case v < 52:
		return byte(v-26) + 'a'
	case v < 62:
		return byte(v-52) + '0'
	case v == 62:
		return '-'
	}
	return '_'
}

// cipherEncode turns raw header+compressed bytes into the cipher body
// (marker, key character, shifted/substituted base64). key is 0..63.
func cipherEncode(raw []byte, key int) string {
	key &= 63
	b64 := base64.RawURLEncoding.EncodeToString(raw)

	var sb strings.Builder
	sb.Grow(len(b64) + 2)
	sb.WriteByte(formatMarker)
	// The key travels as the cipher character whose substitution value
	// equals the key itself.
	sb.WriteByte(stdToSub[stdChar(key)])
	for i := 0; i < len(b64); i++ {
		v := stdValue(b64[i])
		sb.WriteByte(stdToSub[stdChar((v+i+key)&63)])
	}
	return sb.String()
}

// cipherDecode is the exact inverse: unshift by position and key,
// reverse the substitution, then base64-decode.
func cipherDecode(body string) ([]byte, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("%w: cipher body too short", ErrMalformedCode)
	}
	if body[0] != formatMarker {
		return nil, fmt.Errorf("%w: missing %q format marker", ErrMalformedCode, string(formatMarker))
	}
	keyChar := body[1]
	if keyChar >= 128 || subToStd[keyChar] == 0 {
		return nil, fmt.Errorf("%w: invalid key character", ErrMalformedCode)
	}
	key := stdValue(subToStd[keyChar])

	b64 := make([]byte, 0, len(body)-2)
	for i := 2; i < len(body); i++ {
		c := body[i]
		if c >= 128 || subToStd[c] == 0 {
			return nil, fmt.Errorf("%w: character %q outside cipher alphabet", ErrMalformedCode, string(c))
		}
		v := stdValue(subToStd[c])
		b64 = append(b64, stdChar(v-(i-2)-key))
	}

	// Strict mode so that flipped trailing-padding bits cannot decode
	// silently to the same bytes.
	raw, err := base64.RawURLEncoding.Strict().DecodeString(string(b64))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}
	return raw, nil
}
