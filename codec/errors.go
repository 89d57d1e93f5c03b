package codec

import "errors"

// Decode/encode failures are terminal for the call: no partial boards,
// no truncated code strings. Callers match with errors.Is.
var (
	// ErrMalformedCode 密文本身无法解析（非法字符、坏的base64长度等）。
	ErrMalformedCode = errors.New("stgy: malformed code")

	// ErrChecksumMismatch means the CRC32 over the length field and the
	// compressed bytes does not match the stored value. Hand-edited or
	// truncated codes land here.
	ErrChecksumMismatch = errors.New("stgy: checksum mismatch")

	// ErrLengthMismatch means decompression succeeded but produced a
	// different byte count than the header declared.
	ErrLengthMismatch = errors.New("stgy: decompressed length mismatch")

	// ErrDecompressionFailed 压缩流已损坏。
	ErrDecompressionFailed = errors.New("stgy: decompression failed")

	// ErrTagOrderViolation covers every structural payload fault: tags
	// out of order, wrong counts or element kinds, truncation, data
	// after the footer, values outside their enum range.
	ErrTagOrderViolation = errors.New("stgy: tag order violation")

	// ErrUnknownTag 负载里出现了词表之外的tag ID。
	ErrUnknownTag = errors.New("stgy: unknown tag")

	// ErrUnknownObjectType is a decode-time type ID with no table entry.
	ErrUnknownObjectType = errors.New("stgy: unknown object type id")

	// ErrUnsupportedObjectType is an encode-time type name with no
	// table entry.
	ErrUnsupportedObjectType = errors.New("stgy: unsupported object type")

	// ErrTooManyObjects 超过50个对象的画板无法编码。
	ErrTooManyObjects = errors.New("stgy: too many objects")
)
