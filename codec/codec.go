// Package codec 实现攻略板分享码的编解码。
//
// A share code is the board payload serialized into tags, deflated,
// framed with a checksum, and passed through a substitution cipher on
// top of base64. Encode and Decode are pure functions and safe for
// concurrent use.
package codec

import (
	"fmt"
	"strings"

	"github.com/hoshinonyaruko/stgy-share/structs"
)

const (
	codePrefix = "stgy:"
	openBrace  = "["
	closeBrace = "]"
)

// Encode serializes a board into its bracketed share-code form,
// for example [stgy:aK3x...]. Encoding is deterministic: the cipher
// key is derived from the frame checksum, so equal boards always
// produce equal codes.
func Encode(board *structs.Board) (string, error) {
	if board == nil {
		return "", fmt.Errorf("%w: nil board", ErrUnsupportedObjectType)
	}
	if len(board.Objects) > structs.MaxObjects {
		return "", fmt.Errorf("%w: %d objects (limit %d)", ErrTooManyObjects, len(board.Objects), structs.MaxObjects)
	}

	payload, err := marshalBoard(board)
	if err != nil {
		return "", err
	}
	frame, err := sealFrame(payload)
	if err != nil {
		return "", err
	}
	// Low checksum bits make a perfectly good key and keep the output
	// reproducible. The client rolls a random key here instead.
	key := int(frame[0]) & 0x3F

	return openBrace + codePrefix + cipherEncode(frame, key) + closeBrace, nil
}

// Decode parses a share code back into a board. The surrounding
// brackets, the stgy: prefix and any whitespace are optional; the
// decoded board comes back normalized.
func Decode(code string) (*structs.Board, error) {
	body, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	frame, err := cipherDecode(body)
	if err != nil {
		return nil, err
	}
	payload, err := openFrame(frame)
	if err != nil {
		return nil, err
	}
	return unmarshalBoard(payload)
}

// normalizeCode strips the decorations around the cipher text: chat
// brackets, the stgy: prefix and stray whitespace from copy-paste. The
// brackets are stripped independently because chat clients routinely
// cut the trailing one off.
func normalizeCode(code string) (string, error) {
	s := strings.TrimSpace(code)
	s = strings.TrimPrefix(s, openBrace)
	s = strings.TrimSuffix(s, closeBrace)
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, codePrefix) {
		s = strings.TrimSpace(s[len(codePrefix):])
	}
	// 聊天窗口换行会把码折断，拼回去。
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", fmt.Errorf("%w: empty code", ErrMalformedCode)
	}
	return s, nil
}
