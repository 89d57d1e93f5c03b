package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Plaintext frame in front of the cipher layer:
//
//	u32le checksum | u16le uncompressed length | zlib stream
//
// The checksum covers the length field plus the compressed bytes, not
// the uncompressed payload. The game client rejects any other coverage.

const (
	frameHeaderLen   = 6
	compressionLevel = 6 // matches the client's zlib stream
)

func sealFrame(payload []byte) ([]byte, error) {
	if len(payload) > 0xFFFF {
		// Unreachable while the 50-object cap holds.
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds the length field", ErrTooManyObjects, len(payload))
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, compressionLevel)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	comp := buf.Bytes()
	out := make([]byte, frameHeaderLen+len(comp))
	binary.LittleEndian.PutUint16(out[4:6], uint16(len(payload)))
	copy(out[frameHeaderLen:], comp)
	binary.LittleEndian.PutUint32(out[0:4], crc32.ChecksumIEEE(out[4:]))
	return out, nil
}

func openFrame(raw []byte) ([]byte, error) {
	if len(raw) <= frameHeaderLen {
		return nil, fmt.Errorf("%w: frame of %d bytes is too short", ErrMalformedCode, len(raw))
	}
	stored := binary.LittleEndian.Uint32(raw[0:4])
	if got := crc32.ChecksumIEEE(raw[4:]); got != stored {
		return nil, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksumMismatch, stored, got)
	}
	declared := int(binary.LittleEndian.Uint16(raw[4:6]))

	zr, err := zlib.NewReader(bytes.NewReader(raw[frameHeaderLen:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	defer zr.Close()
	// 长度字段顺便当解压上限用，多读一字节即可判定超长，不给
	// 压缩炸弹展开的机会。
	payload, err := io.ReadAll(io.LimitReader(zr, int64(declared)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	if len(payload) != declared {
		return nil, fmt.Errorf("%w: header declares %d bytes, got %d", ErrLengthMismatch, declared, len(payload))
	}
	return payload, nil
}
