package codec

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hoshinonyaruko/stgy-share/structs"
)

// Tagged payload layout (uncompressed). All integers little-endian.
//
//	0x00 u32  payload format version (2)
//	0x04 u32  payload length - 16
//	0x08      10 reserved zero bytes
//	0x12 u32  payload length - 0x1C
//	0x16 u16  0
//	0x18 u16  1
//	0x1A u16  name field length (always 8)
//	0x1C      name, NUL padded
//
// then one [tagType][typeID] pair per object, then the value tags in
// strictly ascending tag order, then the footer. Values for all objects
// are packed per tag (columnar), not per object.
const (
	tagType        = 2
	tagFooter      = 3
	tagFlags       = 4
	tagPosition    = 5
	tagAngle       = 6
	tagSize        = 7
	tagColor       = 8
	tagArcAngle    = 10
	tagDonutRadius = 11
	tagExtra       = 12
)

// Second u16 of every tag is a fixed element-kind constant. The decoder
// validates it; a mismatch means the payload is not ours.
var tagKinds = map[uint16]uint16{
	tagFooter:      1,
	tagFlags:       1,
	tagPosition:    3,
	tagAngle:       1,
	tagSize:        0,
	tagColor:       2,
	tagArcAngle:    1,
	tagDonutRadius: 1,
	tagExtra:       1,
}

const (
	payloadVersion = 2
	headerLen      = 0x1C
	nameFieldLen   = 8
	maxNameBytes   = nameFieldLen - 1 // keep a terminating NUL

	// 坐标在线上放大十倍存储，留一位小数精度。
	coordScale = 10
)

// Per-object visibility flags packed into the flags tag.
const (
	flagVisible = 0x1
	flagLocked  = 0x8
)

var errTruncated = fmt.Errorf("%w: truncated payload", ErrTagOrderViolation)

// truncateName cuts the board name to the 7 bytes the name field can
// hold, without splitting a UTF-8 rune.
func truncateName(s string) string {
	if len(s) <= maxNameBytes {
		return s
	}
	cut := maxNameBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func objectFlags(o *structs.StrategyObject) uint16 {
	var f uint16
	if !o.Hidden {
		f |= flagVisible
	}
	if o.Locked {
		f |= flagLocked
	}
	return f
}

type payloadWriter struct {
	buf []byte
}

func (w *payloadWriter) u16(v uint16) {
	w.buf = append(w.buf, byte(v), byte(v>>8))
}

func (w *payloadWriter) u32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (w *payloadWriter) tag(id, count uint16) {
	w.u16(id)
	w.u16(tagKinds[id])
	w.u16(count)
}

// marshalBoard serializes a board into the tagged payload. The board is
// normalized first so that only type-relevant parameters reach the wire.
func marshalBoard(board *structs.Board) ([]byte, error) {
	b := board.Normalized()
	n := len(b.Objects)

	bgIdx, ok := structs.BackgroundIndex(b.Background)
	if !ok {
		return nil, fmt.Errorf("%w: board background %q", ErrUnsupportedObjectType, b.Background)
	}
	ids := make([]uint16, n)
	for i := range b.Objects {
		id, known := structs.TypeID(b.Objects[i].Type)
		if !known {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedObjectType, b.Objects[i].Type)
		}
		ids[i] = id
	}

	var w payloadWriter
	w.u32(payloadVersion)
	w.u32(0) // fixed up below
	w.buf = append(w.buf, make([]byte, 10)...)
	w.u32(0) // fixed up below
	w.u16(0)
	w.u16(1)
	w.u16(nameFieldLen)
	var nameField [nameFieldLen]byte
	copy(nameField[:], truncateName(b.Name))
	w.buf = append(w.buf, nameField[:]...)

	for _, id := range ids {
		w.u16(tagType)
		w.u16(id)
	}

	if n > 0 {
		// The single-object flags record is a fixed 8-byte layout, the
		// general layout carries one u16 per object. The client treats
		// these as distinct cases; keep the branch explicit.
		if n == 1 {
			w.tag(tagFlags, 1)
			w.u16(objectFlags(&b.Objects[0]))
		} else {
			w.tag(tagFlags, uint16(n))
			for i := range b.Objects {
				w.u16(objectFlags(&b.Objects[i]))
			}
		}

		w.tag(tagPosition, uint16(n))
		for i := range b.Objects {
			w.u16(uint16(int16(b.Objects[i].X * coordScale)))
			w.u16(uint16(int16(b.Objects[i].Y * coordScale)))
		}

		// Value tags below are emitted only when some object carries a
		// non-default value; the decoder fills defaults for the rest.
		anyAngle, anyColor, anyArc, anyDonut := false, false, false, false
		for i := range b.Objects {
			o := &b.Objects[i]
			anyAngle = anyAngle || o.Angle != 0
			anyColor = anyColor || o.Transparency != 0 ||
				o.ColorR != structs.DefaultColorChannel ||
				o.ColorG != structs.DefaultColorChannel ||
				o.ColorB != structs.DefaultColorChannel
			anyArc = anyArc || o.ArcAngle != 0
			anyDonut = anyDonut || o.DonutRadius != 0
		}

		if anyAngle {
			w.tag(tagAngle, uint16(n))
			for i := range b.Objects {
				w.u16(uint16(int16(b.Objects[i].Angle)))
			}
		}

		w.tag(tagSize, uint16(n))
		for i := range b.Objects {
			w.buf = append(w.buf, byte(b.Objects[i].Size))
		}
		if n%2 == 1 {
			w.buf = append(w.buf, 0) // keep the stream 16-bit aligned
		}

		if anyColor {
			w.tag(tagColor, uint16(n))
			for i := range b.Objects {
				o := &b.Objects[i]
				w.buf = append(w.buf, byte(o.ColorR), byte(o.ColorG), byte(o.ColorB), byte(o.Transparency))
			}
		}
		if anyArc {
			w.tag(tagArcAngle, uint16(n))
			for i := range b.Objects {
				w.u16(uint16(b.Objects[i].ArcAngle))
			}
		}
		if anyDonut {
			w.tag(tagDonutRadius, uint16(n))
			for i := range b.Objects {
				w.u16(uint16(b.Objects[i].DonutRadius))
			}
		}
	}

	w.tag(tagFooter, 1)
	w.u16(bgIdx)

	binary.LittleEndian.PutUint32(w.buf[0x04:], uint32(len(w.buf)-16))
	binary.LittleEndian.PutUint32(w.buf[0x12:], uint32(len(w.buf)-headerLen))
	return w.buf, nil
}

type payloadReader struct {
	data []byte
	pos  int
}

func (r *payloadReader) u16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, errTruncated
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *payloadReader) peekU16() (uint16, bool) {
	if r.pos+2 > len(r.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(r.data[r.pos:]), true
}

func (r *payloadReader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, errTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// expectTag consumes a tag header and validates its element kind and
// object count.
func (r *payloadReader) tagHeader(id uint16, n int) (int, error) {
	kind, err := r.u16()
	if err != nil {
		return 0, err
	}
	if kind != tagKinds[id] {
		return 0, fmt.Errorf("%w: tag %d carries element kind %d", ErrTagOrderViolation, id, kind)
	}
	count, err := r.u16()
	if err != nil {
		return 0, err
	}
	if int(count) != n {
		return 0, fmt.Errorf("%w: tag %d carries %d values for %d objects", ErrTagOrderViolation, id, count, n)
	}
	return int(count), nil
}

// unmarshalBoard parses the tagged payload back into a board. Tags must
// appear in strictly ascending order and the footer must terminate the
// payload exactly; anything else fails hard.
func unmarshalBoard(payload []byte) (*structs.Board, error) {
	if len(payload) < headerLen {
		return nil, errTruncated
	}
	if v := binary.LittleEndian.Uint32(payload[0:4]); v != payloadVersion {
		return nil, fmt.Errorf("%w: payload version %d", ErrTagOrderViolation, v)
	}
	nameLen := int(binary.LittleEndian.Uint16(payload[0x1A:]))
	if len(payload) < headerLen+nameLen {
		return nil, errTruncated
	}
	name := strings.TrimRight(string(payload[headerLen:headerLen+nameLen]), "\x00")

	r := &payloadReader{data: payload, pos: headerLen + nameLen}

	var objs []structs.StrategyObject
	for {
		t, ok := r.peekU16()
		if !ok {
			return nil, errTruncated
		}
		if t != tagType {
			break
		}
		r.pos += 2
		id, err := r.u16()
		if err != nil {
			return nil, err
		}
		typeName, known := structs.TypeName(id)
		if !known {
			return nil, fmt.Errorf("%w: %d", ErrUnknownObjectType, id)
		}
		objs = append(objs, structs.StrategyObject{
			Type:   typeName,
			Size:   structs.DefaultSize,
			ColorR: structs.DefaultColorChannel,
			ColorG: structs.DefaultColorChannel,
			ColorB: structs.DefaultColorChannel,
		})
	}
	n := len(objs)

	applyFlags := func(i int, f uint16) {
		objs[i].Hidden = f&flagVisible == 0
		objs[i].Locked = f&flagLocked != 0
	}

	sawFlags, sawPosition, sawSize := false, false, false
	last := tagType
	var background structs.Background

	for {
		t, err := r.u16()
		if err != nil {
			return nil, err
		}

		if t == tagFooter {
			if _, err := r.tagHeader(tagFooter, 1); err != nil {
				return nil, err
			}
			bg, err := r.u16()
			if err != nil {
				return nil, err
			}
			var ok bool
			background, ok = structs.BackgroundByIndex(bg)
			if !ok {
				return nil, fmt.Errorf("%w: background selector %d out of range", ErrTagOrderViolation, bg)
			}
			break
		}

		switch t {
		case tagFlags, tagPosition, tagAngle, tagSize, tagColor, tagArcAngle, tagDonutRadius, tagExtra:
		default:
			return nil, fmt.Errorf("%w: tag %d", ErrUnknownTag, t)
		}
		if int(t) <= last {
			return nil, fmt.Errorf("%w: tag %d after tag %d", ErrTagOrderViolation, t, last)
		}
		last = int(t)

		switch t {
		case tagFlags:
			sawFlags = true
			kind, err := r.u16()
			if err != nil {
				return nil, err
			}
			if kind != tagKinds[tagFlags] {
				return nil, fmt.Errorf("%w: tag %d carries element kind %d", ErrTagOrderViolation, t, kind)
			}
			count, err := r.u16()
			if err != nil {
				return nil, err
			}
			if n == 1 && count == 1 {
				// fixed single-object record
				f, err := r.u16()
				if err != nil {
					return nil, err
				}
				applyFlags(0, f)
			} else if int(count) == n {
				for i := 0; i < n; i++ {
					f, err := r.u16()
					if err != nil {
						return nil, err
					}
					applyFlags(i, f)
				}
			} else {
				return nil, fmt.Errorf("%w: flags tag carries %d values for %d objects", ErrTagOrderViolation, count, n)
			}

		case tagPosition:
			sawPosition = true
			count, err := r.tagHeader(tagPosition, n)
			if err != nil {
				return nil, err
			}
			for i := 0; i < count; i++ {
				x, err := r.u16()
				if err != nil {
					return nil, err
				}
				y, err := r.u16()
				if err != nil {
					return nil, err
				}
				objs[i].X = int(int16(x)) / coordScale
				objs[i].Y = int(int16(y)) / coordScale
			}

		case tagAngle:
			count, err := r.tagHeader(tagAngle, n)
			if err != nil {
				return nil, err
			}
			for i := 0; i < count; i++ {
				v, err := r.u16()
				if err != nil {
					return nil, err
				}
				objs[i].Angle = int(int16(v))
			}

		case tagSize:
			sawSize = true
			count, err := r.tagHeader(tagSize, n)
			if err != nil {
				return nil, err
			}
			vals, err := r.bytes(count)
			if err != nil {
				return nil, err
			}
			for i, v := range vals {
				if v != 0 {
					objs[i].Size = int(v)
				}
			}
			if count%2 == 1 {
				if _, err := r.bytes(1); err != nil {
					return nil, err
				}
			}

		case tagColor:
			count, err := r.tagHeader(tagColor, n)
			if err != nil {
				return nil, err
			}
			vals, err := r.bytes(count * 4)
			if err != nil {
				return nil, err
			}
			for i := 0; i < count; i++ {
				objs[i].ColorR = int(vals[i*4])
				objs[i].ColorG = int(vals[i*4+1])
				objs[i].ColorB = int(vals[i*4+2])
				objs[i].Transparency = int(vals[i*4+3])
			}

		case tagArcAngle:
			count, err := r.tagHeader(tagArcAngle, n)
			if err != nil {
				return nil, err
			}
			for i := 0; i < count; i++ {
				v, err := r.u16()
				if err != nil {
					return nil, err
				}
				objs[i].ArcAngle = int(v)
			}

		case tagDonutRadius:
			count, err := r.tagHeader(tagDonutRadius, n)
			if err != nil {
				return nil, err
			}
			for i := 0; i < count; i++ {
				v, err := r.u16()
				if err != nil {
					return nil, err
				}
				objs[i].DonutRadius = int(v)
			}

		case tagExtra:
			count, err := r.tagHeader(tagExtra, n)
			if err != nil {
				return nil, err
			}
			if _, err := r.bytes(count * 2); err != nil {
				return nil, err
			}
		}
	}

	if r.pos != len(r.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after footer", ErrTagOrderViolation, len(r.data)-r.pos)
	}
	if n > 0 && (!sawFlags || !sawPosition || !sawSize) {
		return nil, fmt.Errorf("%w: missing required tag before footer", ErrTagOrderViolation)
	}

	board := &structs.Board{Name: name, Background: background, Objects: objs}
	return board.Normalized(), nil
}
