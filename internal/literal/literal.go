// Package literal renders JSON leaf values as source literals.
package literal

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mcncl/objgen/internal/errors"
	"github.com/mcncl/objgen/internal/models"
)

// Null is the literal for a missing reference.
const Null = "null"

// Format renders value as a literal of the leaf type ref. It fails with a
// format error when the value's JSON shape cannot be coerced to the kind.
func Format(value models.JSONValue, ref models.TypeRef) (string, error) {
	if value == nil {
		return "", mismatch(value, ref, "null has no literal")
	}
	switch v := value.(type) {
	case models.JSONObject, models.JSONArray:
		return "", mismatch(v, ref, "structured values are not leaves")
	}

	switch ref.Leaf {
	case models.LeafString:
		s, ok := scalarText(value)
		if !ok {
			return "", mismatch(value, ref, "")
		}
		return Quote(s), nil

	case models.LeafChar:
		s, ok := scalarText(value)
		if !ok || s == "" {
			return "", mismatch(value, ref, "expected a non-empty string")
		}
		r, _ := utf8.DecodeRuneInString(s)
		if r > 0xFFFF {
			return "", mismatch(value, ref, fmt.Sprintf("U+%04X does not fit in a single char", r))
		}
		return QuoteRune(r), nil

	case models.LeafBool:
		switch v := value.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			if b, err := strconv.ParseBool(v); err == nil && (v == "true" || v == "false") {
				return strconv.FormatBool(b), nil
			}
		}
		return "", mismatch(value, ref, "")

	case models.LeafInt32:
		n, err := integer(value, math.MinInt32, math.MaxInt32)
		if err != nil {
			return "", mismatch(value, ref, err.Error())
		}
		return strconv.FormatInt(n, 10), nil

	case models.LeafInt64:
		n, err := integer(value, math.MinInt64, math.MaxInt64)
		if err != nil {
			return "", mismatch(value, ref, err.Error())
		}
		return strconv.FormatInt(n, 10) + "L", nil

	case models.LeafInt16:
		n, err := integer(value, math.MinInt16, math.MaxInt16)
		if err != nil {
			return "", mismatch(value, ref, err.Error())
		}
		return "(short)" + strconv.FormatInt(n, 10), nil

	case models.LeafByte:
		n, err := integer(value, math.MinInt8, math.MaxInt8)
		if err != nil {
			return "", mismatch(value, ref, err.Error())
		}
		return "(byte)" + strconv.FormatInt(n, 10), nil

	case models.LeafFloat32:
		f, err := float(value, 32)
		if err != nil {
			return "", mismatch(value, ref, err.Error())
		}
		return decimal(f, 32) + "f", nil

	case models.LeafFloat64:
		f, err := float(value, 64)
		if err != nil {
			return "", mismatch(value, ref, err.Error())
		}
		return decimal(f, 64), nil

	case models.LeafEnum:
		s, ok := value.(string)
		if !ok || !isIdentifier(s) {
			return "", mismatch(value, ref, "expected an enum constant name")
		}
		return ref.Name + "." + s, nil
	}

	return "", mismatch(value, ref, "not a leaf kind")
}

// FormatUntyped renders a leaf value by its JSON shape alone. It is used for
// elements of collections whose element type is opaque.
func FormatUntyped(value models.JSONValue) (string, error) {
	switch v := value.(type) {
	case nil:
		return Null, nil
	case string:
		return Quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			if n < math.MinInt32 || n > math.MaxInt32 {
				return v.String() + "L", nil
			}
			return v.String(), nil
		}
		if f, err := v.Float64(); err == nil {
			// Integers beyond 64 bits only fit a double.
			if !strings.ContainsAny(v.String(), ".eE") {
				return decimal(f, 64), nil
			}
			return v.String(), nil
		}
		return "", errors.NewFormatError(fmt.Sprintf("number %s is out of range", v), errors.ErrLeafMismatch)
	default:
		return "", errors.NewFormatError(fmt.Sprintf("%s value has no literal form", describe(value)), errors.ErrLeafMismatch)
	}
}

// Quote renders s as a double-quoted string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		writeEscaped(&b, r, '"')
	}
	b.WriteByte('"')
	return b.String()
}

// QuoteRune renders r as a single-quoted character literal.
func QuoteRune(r rune) string {
	var b strings.Builder
	b.WriteByte('\'')
	writeEscaped(&b, r, '\'')
	b.WriteByte('\'')
	return b.String()
}

func writeEscaped(b *strings.Builder, r rune, quote rune) {
	switch r {
	case '\\':
		b.WriteString(`\\`)
	case '"':
		b.WriteString(`\"`)
	case '\n':
		b.WriteString(`\n`)
	case '\r':
		b.WriteString(`\r`)
	case '\t':
		b.WriteString(`\t`)
	case '\b':
		b.WriteString(`\b`)
	case '\f':
		b.WriteString(`\f`)
	default:
		switch {
		case r == quote:
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			// \u escapes are processed before lexing in this dialect, so
			// control characters use fixed-width octal escapes instead.
			fmt.Fprintf(b, `\%03o`, r)
		default:
			b.WriteRune(r)
		}
	}
}

// scalarText returns the text of a string, number or boolean value.
func scalarText(value models.JSONValue) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func integer(value models.JSONValue, lo, hi int64) (int64, error) {
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return 0, fmt.Errorf("expected a number")
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n < lo || n > hi {
			return 0, fmt.Errorf("%d is out of range [%d, %d]", n, lo, hi)
		}
		return n, nil
	}

	// Accept integral values written with a fraction or exponent, e.g. 10.0 or 1e3.
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	if !r.IsInt() {
		return 0, fmt.Errorf("%s is not an integer", text)
	}
	n := r.Num()
	if !n.IsInt64() || n.Int64() < lo || n.Int64() > hi {
		return 0, fmt.Errorf("%s is out of range [%d, %d]", text, lo, hi)
	}
	return n.Int64(), nil
}

func float(value models.JSONValue, bitSize int) (float64, error) {
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return 0, fmt.Errorf("expected a number")
	}
	f, err := strconv.ParseFloat(text, bitSize)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%q is not a finite %d-bit float", text, bitSize)
	}
	return f, nil
}

// decimal always yields a floating point literal, e.g. 10 -> "10.0".
func decimal(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return strings.Replace(s, "e+", "e", 1)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func describe(value models.JSONValue) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case models.JSONObject:
		return "object"
	case models.JSONArray:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func mismatch(value models.JSONValue, ref models.TypeRef, detail string) error {
	msg := fmt.Sprintf("cannot format %s value as %s", describe(value), ref)
	if detail != "" {
		msg += ": " + detail
	}
	return errors.NewFormatError(msg, errors.ErrLeafMismatch)
}
