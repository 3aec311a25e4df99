package pack

import "unicode/utf8"

// NullTermString is the Descriptor for a null-terminated string: bytes
// followed by a trailing zero. Wire size is len(chars)+1; alignment is 1.
type NullTermString struct{}

func (NullTermString) Name() string { return "string" }
func (NullTermString) Align() int { return 1 }
func (NullTermString) StaticSize() int { return 1 }

func (NullTermString) Size(v interface{}) int {
	s, _ := v.(string)
	return len(s) + 1
}

func (NullTermString) Encode(buf []byte, v interface{}) (int, error) {
	s, _ := v.(string)
	n := len(s) + 1
	if err := needBytes(buf, n); err != nil {
		return 0, err
	}
	copy(buf, s)
	buf[len(s)] = 0
	return n, nil
}

func (NullTermString) Decode(buf []byte, lenHint int) (interface{}, int, error) {
	for i, b := range buf {
		if b == 0 {
			s := buf[:i]
			if !utf8.Valid(s) {
				return nil, 0, ErrInvalidUTF8
			}
			return string(s), i + 1, nil
		}
	}
	return nil, 0, ErrMissingTerminator
}

// FixedString is the Descriptor for a fixed-length, zero-padded string of N
// bytes. The decoder reads exactly N bytes and trims at the first zero.
type FixedString struct {
	N int
}

func (f FixedString) Name() string { return "string" }
func (FixedString) Align() int { return 1 }
func (f FixedString) StaticSize() int { return f.N }
func (f FixedString) Size(v interface{}) int { return f.N }

func (f FixedString) Encode(buf []byte, v interface{}) (int, error) {
	if err := needBytes(buf, f.N); err != nil {
		return 0, err
	}
	s, _ := v.(string)
	if len(s) > f.N {
		return 0, ErrShortBuffer
	}
	for i := 0; i < f.N; i++ {
		buf[i] = 0
	}
	copy(buf, s)
	return f.N, nil
}

func (f FixedString) Decode(buf []byte, lenHint int) (interface{}, int, error) {
	if err := needBytes(buf, f.N); err != nil {
		return nil, 0, err
	}
	raw := buf[:f.N]
	end := f.N
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	s := raw[:end]
	if !utf8.Valid(s) {
		return nil, 0, ErrInvalidUTF8
	}
	return string(s), f.N, nil
}
