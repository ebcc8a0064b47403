package patch

import (
	"strings"
)

const subprocessRun = "subprocess.run("

// AddSubprocessEncoding adds encoding='utf-8', errors='replace' to
// subprocess.run calls whose decoded output would otherwise follow the
// console code page. Calls already passing an encoding or **kwargs are left
// alone, as are calls that capture bytes, whose callers decode themselves.
// It returns the new source and the number of calls changed.
func AddSubprocessEncoding(src string) (string, int) {
	var b strings.Builder
	changed := 0
	pos := 0
	for {
		idx := strings.Index(src[pos:], subprocessRun)
		if idx < 0 {
			b.WriteString(src[pos:])
			return b.String(), changed
		}
		idx += pos
		open := idx + len(subprocessRun)
		if idx > 0 && (isIdentChar(src[idx-1]) || src[idx-1] == '.') {
			b.WriteString(src[pos:open])
			pos = open
			continue
		}
		closing, ok := matchingParen(src, open)
		if !ok {
			b.WriteString(src[pos:])
			return b.String(), changed
		}

		b.WriteString(src[pos:open])
		body := src[open:closing]
		if kwargs := missingEncodingArgs(body); kwargs != "" {
			trimmed := strings.TrimRight(body, " \t\r\n")
			b.WriteString(trimmed)
			if strings.HasSuffix(trimmed, ",") {
				b.WriteString(" ")
			} else {
				b.WriteString(", ")
			}
			b.WriteString(kwargs)
			b.WriteString(body[len(trimmed):])
			changed++
		} else {
			b.WriteString(body)
		}
		b.WriteString(")")
		pos = closing + 1
	}
}

// missingEncodingArgs returns the keyword arguments to append to a call
// body, or "" when the call should stay as it is.
func missingEncodingArgs(body string) string {
	compact := strings.Join(strings.Fields(body), "")
	if compact == "" || strings.Contains(compact, "encoding=") || strings.Contains(compact, "**") {
		return ""
	}
	textMode := strings.Contains(compact, "text=True") || strings.Contains(compact, "universal_newlines=True")
	captures := strings.Contains(compact, "capture_output=True") ||
		strings.Contains(compact, "stdout=subprocess.PIPE") ||
		strings.Contains(compact, "stderr=subprocess.PIPE")
	if captures && !textMode {
		return ""
	}
	if strings.Contains(compact, "errors=") {
		return "encoding='utf-8'"
	}
	return "encoding='utf-8', errors='replace'"
}

// matchingParen returns the index of the parenthesis closing the call whose
// arguments start at open. String literals and comments are skipped.
func matchingParen(src string, open int) (int, bool) {
	depth := 1
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				if c != ')' {
					return 0, false
				}
				return i, true
			}
		case '#':
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return 0, false
			}
			i += nl
		case '"', '\'':
			end, ok := skipString(src, i)
			if !ok {
				return 0, false
			}
			i = end
		}
	}
	return 0, false
}

// skipString returns the index of the last byte of the literal opening at i.
func skipString(src string, i int) (int, bool) {
	quote := src[i : i+1]
	if strings.HasPrefix(src[i:], strings.Repeat(quote, 3)) {
		end := strings.Index(src[i+3:], strings.Repeat(quote, 3))
		if end < 0 {
			return 0, false
		}
		return i + 3 + end + 2, true
	}
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return 0, false
		case src[i]:
			return j, true
		}
	}
	return 0, false
}
