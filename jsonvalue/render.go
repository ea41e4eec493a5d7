package jsonvalue

const hex = "0123456789abcdef"

// AppendString appends s as a quoted JSON string.
//
// Only '"', '\\' and bytes below 0x20 are escaped. Everything else, including
// U+007F..U+009F and bytes that are not valid UTF-8, is copied verbatim.
func AppendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

// AppendJSON appends the compact JSON text of v.
func (v Value) AppendJSON(dst []byte) []byte {
	switch v.kind {
	case Bool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case Number:
		return append(dst, v.s...)
	case String:
		return AppendString(dst, v.s)
	case Array:
		dst = append(dst, '[')
		for _, e := range v.arr {
			dst = e.AppendJSON(dst)
			dst = append(dst, ',')
		}
		return closeContainer(dst, len(v.arr), ']')
	case Object:
		dst = append(dst, '{')
		n := v.Len()
		for k, mv := range v.Members() {
			dst = AppendString(dst, k)
			dst = append(dst, ':')
			dst = mv.AppendJSON(dst)
			dst = append(dst, ',')
		}
		return closeContainer(dst, n, '}')
	}
	return append(dst, "null"...)
}

// String renders v as compact JSON text.
func (v Value) String() string {
	return string(v.AppendJSON(nil))
}

func closeContainer(dst []byte, n int, closer byte) []byte {
	if n == 0 {
		return append(dst, closer)
	}
	dst[len(dst)-1] = closer
	return dst
}
