package track

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatArgs renders an argument list as a parenthesized tuple. Strings and
// byte slices are quoted so that ("42",) and (42,) stay distinguishable; a
// single argument keeps a trailing comma.
func FormatArgs(args []any) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatArg(a))
	}
	if len(args) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// FormatOutput renders a result as plain text.
func FormatOutput(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// FormatError renders a failed call's output entry.
func FormatError(err error) string {
	return "error: " + err.Error()
}

func formatArg(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case []byte:
		return strconv.Quote(string(x))
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
