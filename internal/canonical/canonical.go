// Package canonical produces the canonical JSON bytes and content hashes
// used for every artifact and identity computation in job-radar. It is the
// only serialization allowed on a hashing path: sorted object keys, NFC
// strings, UTF-8, no floats, no null. Scores travel as Decimal fixed-point
// values so float representation never reaches the byte level.
package canonical

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Decimal is an exact fixed-point value in hundredths, rendered with exactly
// two fraction digits ("72.50", "-3.25", "0.00").
type Decimal int64

// String renders the fixed-point value with exactly two fraction digits.
// CSV emission uses the same rendering as JSON so numeric formatting is
// fixed across every artifact format.
func (d Decimal) String() string {
	var buf bytes.Buffer
	marshalDecimal(&buf, d)
	return buf.String()
}

// Object is a JSON object payload. Keys are marshaled in ascending byte order.
type Object map[string]any

// Array is a JSON array payload. Element order is preserved.
type Array []any

// Marshal produces canonical JSON for v.
//
// Allowed value types: string, int, int64, bool, Decimal, Array/[]any,
// Object/map[string]any. Floats and null are rejected: a float on a hashing
// path means a caller skipped fixed-point conversion, and that is a bug, not
// a formatting choice.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalString(buf, val)
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case bool:
		buf.WriteString(strconv.FormatBool(val))
		return nil
	case Decimal:
		marshalDecimal(buf, val)
		return nil
	case Array:
		return marshalArray(buf, val)
	case []any:
		return marshalArray(buf, val)
	case []string:
		arr := make(Array, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalArray(buf, arr)
	case Object:
		return marshalObject(buf, val)
	case map[string]any:
		return marshalObject(buf, val)
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalString writes an NFC-normalized JSON string with minimal escaping:
// only the characters JSON requires (quote, backslash, control characters).
// HTML-safe escaping is deliberately absent; it is a transport concern and
// would change bytes between encoders.
func marshalString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("invalid UTF-8 in string %q", s)
	}
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return nil
}

func marshalDecimal(buf *bytes.Buffer, d Decimal) {
	cp := int64(d)
	if cp < 0 {
		buf.WriteByte('-')
		cp = -cp
	}
	buf.WriteString(strconv.FormatInt(cp/100, 10))
	buf.WriteByte('.')
	frac := cp % 100
	if frac < 10 {
		buf.WriteByte('0')
	}
	buf.WriteString(strconv.FormatInt(frac, 10))
}

func marshalArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshal(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalString(buf, k); err != nil {
			return fmt.Errorf("object key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := marshal(buf, obj[k]); err != nil {
			return fmt.Errorf("object[%q]: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}
