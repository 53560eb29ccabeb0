package gov

import "encoding/binary"

// cursor is the teacher's read-cursor idiom (consensus/wire.go), reused
// verbatim here: a position-tracking byte-slice reader with fixed-width
// and CompactSize-varint helpers.
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b, pos: 0}
}

func (c *cursor) remaining() int {
	if c.pos >= len(c.b) {
		return 0
	}
	return len(c.b) - c.pos
}

func (c *cursor) readExact(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, govErr(ErrDecode, "truncated")
	}
	start := c.pos
	c.pos += n
	return c.b[start:c.pos], nil
}

func (c *cursor) readU8() (byte, error) {
	b, err := c.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readU32LE() (uint32, error) {
	b, err := c.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readI64LE() (int64, error) {
	b, err := c.readExact(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (c *cursor) readCompactSize() (uint64, error) {
	v, used, err := decodeCompactSize(c.b[c.pos:])
	if err != nil {
		return 0, err
	}
	c.pos += used
	return v, nil
}

func (c *cursor) readString() (string, error) {
	n, err := c.readCompactSize()
	if err != nil {
		return "", err
	}
	if n > uint64(c.remaining()) {
		return "", govErr(ErrDecode, "truncated string")
	}
	b, err := c.readExact(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cursor) readBytes() ([]byte, error) {
	n, err := c.readCompactSize()
	if err != nil {
		return nil, err
	}
	if n > uint64(c.remaining()) {
		return nil, govErr(ErrDecode, "truncated bytes")
	}
	b, err := c.readExact(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// decodeCompactSize decodes one Bitcoin-style CompactSize varint from the
// front of buf, returning the value and the number of bytes consumed.
func decodeCompactSize(buf []byte) (uint64, int, error) {
	if len(buf) < 1 {
		return 0, 0, govErr(ErrDecode, "truncated compact size")
	}
	switch {
	case buf[0] < 0xfd:
		return uint64(buf[0]), 1, nil
	case buf[0] == 0xfd:
		if len(buf) < 3 {
			return 0, 0, govErr(ErrDecode, "truncated compact size (u16)")
		}
		return uint64(binary.LittleEndian.Uint16(buf[1:3])), 3, nil
	case buf[0] == 0xfe:
		if len(buf) < 5 {
			return 0, 0, govErr(ErrDecode, "truncated compact size (u32)")
		}
		return uint64(binary.LittleEndian.Uint32(buf[1:5])), 5, nil
	default:
		if len(buf) < 9 {
			return 0, 0, govErr(ErrDecode, "truncated compact size (u64)")
		}
		return binary.LittleEndian.Uint64(buf[1:9]), 9, nil
	}
}

// appendCompactSize appends n to dst in Bitcoin-style CompactSize
// encoding (consensus/compactsize_write.go's exact encoding rule).
func appendCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		dst = append(dst, 0xfd)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(n))
		return append(dst, tmp[:]...)
	case n <= 0xffff_ffff:
		dst = append(dst, 0xfe)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(n))
		return append(dst, tmp[:]...)
	default:
		dst = append(dst, 0xff)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], n)
		return append(dst, tmp[:]...)
	}
}

func appendU32LE(dst []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(dst, tmp[:]...)
}

func appendI64LE(dst []byte, v int64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	return append(dst, tmp[:]...)
}

func appendString(dst []byte, s string) []byte {
	dst = appendCompactSize(dst, uint64(len(s)))
	return append(dst, s...)
}

func appendBytes(dst []byte, b []byte) []byte {
	dst = appendCompactSize(dst, uint64(len(b)))
	return append(dst, b...)
}
