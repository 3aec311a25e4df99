package schema

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
)

// errcodeLine matches one `_(SYMBOL, code, "message")` entry of the
// dataplane's C error-code header.
var errcodeLine = regexp.MustCompile(`^\s*_\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*,\s*(-?\d+)\s*,\s*"((?:[^"\\]|\\.)*)"\s*\)`)

// ParseErrorCodes reads a C-like header of `_(SYMBOL, code, "message")`
// lines and returns the {i32 -> message} table generated `check_retval`
// code uses to turn a non-zero retval into readable text.
func ParseErrorCodes(r io.Reader) (map[int32]string, error) {
	codes := make(map[int32]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := errcodeLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		code, err := strconv.ParseInt(m[2], 10, 32)
		if err != nil {
			continue
		}
		codes[int32(code)] = unescape(m[3])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

func unescape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		out = append(out, s[i])
	}
	return string(out)
}
