// Package keys turns arbitrary call arguments into store-safe key fragments.
package keys

import (
	"crypto/sha256"
	"encoding"
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// MaxLength is the default upper bound for any key handed to a store.
// memcache rejects keys over 250 bytes; 240 leaves room for client-side prefixes.
const MaxLength = 240

// GenerationPrefix marks counter keys in the shared keyspace.
const GenerationPrefix = "_gen_"

// hashSep joins the readable prefix of a shortened key to its digest.
const hashSep = "%-"

// digestLen is the number of hex chars kept from the sha256 of an oversized key.
const digestLen = 32

// maxDepth bounds pointer chains and nesting walked by Coerce.
const maxDepth = 32

var detMode = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var (
	timeType          = reflect.TypeFor[time.Time]()
	bigIntType        = reflect.TypeFor[big.Int]()
	cborMarshalerType = reflect.TypeFor[cbor.Marshaler]()
	binMarshalerType  = reflect.TypeFor[encoding.BinaryMarshaler]()
)

// GenerationKey returns the store key for a generation suffix.
func GenerationKey(suffix string, max int) string {
	return Sanitize(GenerationPrefix+suffix, max)
}

// Coerce renders v as a stable string. Values that are logically equal render
// identically regardless of their Go integer width; strings are quoted so that
// "42" and 42 never collide.
//
// Values of named types carry the type name, so time.Duration(5) and 5 differ.
// Pointers are followed; a nil pointer renders as None plus its type. Methods
// of v are never called. Composite values fall back to deterministic CBOR and
// must not hold unexported struct fields, which CBOR would silently skip.
func Coerce(v any) (string, error) {
	return coerce(v, 0)
}

func coerce(v any, depth int) (string, error) {
	switch x := v.(type) {
	case nil:
		return "None", nil
	case string:
		return strconv.Quote(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case []byte:
		return "b" + strconv.Quote(string(x)), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	}

	rv := reflect.ValueOf(v)
	t := rv.Type()
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "None(" + t.String() + ")", nil
		}
		if depth >= maxDepth {
			return "", fmt.Errorf("keys: %s: pointer chain deeper than %d", t, maxDepth)
		}
		return coerce(rv.Elem().Interface(), depth+1)
	case reflect.String:
		return named(t, strconv.Quote(rv.String())), nil
	case reflect.Bool:
		return named(t, strconv.FormatBool(rv.Bool())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return named(t, strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return named(t, strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return named(t, strconv.FormatFloat(rv.Float(), 'g', -1, 64)), nil
	case reflect.Complex64, reflect.Complex128:
		return named(t, strconv.FormatComplex(rv.Complex(), 'g', -1, 128)), nil
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return "", fmt.Errorf("keys: cannot coerce value of type %T", v)
	}

	if err := checkEncodable(rv, 0); err != nil {
		return "", err
	}
	b, err := detMode.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("keys: cannot coerce value of type %T: %w", v, err)
	}
	return t.String() + "(cbor:" + hex.EncodeToString(b) + ")", nil
}

// named prefixes s with the type name unless t is a predeclared type.
func named(t reflect.Type, s string) string {
	if t.PkgPath() == "" {
		return s
	}
	return t.String() + "(" + s + ")"
}

// checkEncodable walks rv and rejects state CBOR cannot represent.
func checkEncodable(rv reflect.Value, depth int) error {
	if !rv.IsValid() {
		return nil
	}
	t := rv.Type()
	if depth > maxDepth {
		return fmt.Errorf("keys: %s: nested deeper than %d", t, maxDepth)
	}
	if t == timeType || t == bigIntType || t.Implements(cborMarshalerType) || t.Implements(binMarshalerType) {
		return nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return checkEncodable(rv.Elem(), depth+1)
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if f.Name == "_" {
				continue
			}
			if !f.IsExported() && !(f.Anonymous && f.Type.Kind() == reflect.Struct) {
				return fmt.Errorf("keys: cannot coerce %s: unexported field %s", t, f.Name)
			}
			if err := checkEncodable(rv.Field(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := range rv.Len() {
			if err := checkEncodable(rv.Index(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		it := rv.MapRange()
		for it.Next() {
			if err := checkEncodable(it.Key(), depth+1); err != nil {
				return err
			}
			if err := checkEncodable(it.Value(), depth+1); err != nil {
				return err
			}
		}
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Errorf("keys: cannot coerce %s", t)
	}
	return nil
}

// Sanitize makes key safe for memcache-style stores: bytes outside printable
// ASCII (and '%') are percent-escaped, and keys longer than max are collapsed
// to a prefix plus "%-" and a sha256 digest of the full escaped key. Escaping
// only ever writes '%' before two hex digits, so a shortened key never equals
// a key that was merely escaped. max <= 0 disables the length bound.
func Sanitize(key string, max int) string {
	esc := escape(key)
	if max <= 0 || len(esc) <= max {
		return esc
	}
	sum := sha256.Sum256([]byte(esc))
	digest := hex.EncodeToString(sum[:])[:digestLen]
	tail := hashSep + digest
	keep := max - len(tail)
	if keep < 0 {
		return tail[:max]
	}
	return esc[:keep] + tail
}

func needsEscape(b byte) bool {
	return b < 0x21 || b > 0x7e || b == '%'
}

func escape(s string) string {
	i := 0
	for i < len(s) && !needsEscape(s[i]) {
		i++
	}
	if i == len(s) {
		return s
	}

	const hexdig = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	sb.WriteString(s[:i])
	for ; i < len(s); i++ {
		b := s[i]
		if !needsEscape(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexdig[b>>4])
		sb.WriteByte(hexdig[b&0x0f])
	}
	return sb.String()
}
