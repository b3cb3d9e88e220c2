package stacks

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Clarity value type prefixes used by the consensus serialization.
const (
	clarityInt         byte = 0x00
	clarityUInt        byte = 0x01
	clarityBoolTrue    byte = 0x03
	clarityBoolFalse   byte = 0x04
	clarityNone        byte = 0x09
	claritySome        byte = 0x0a
	clarityTuple       byte = 0x0c
	clarityStringASCII byte = 0x0d
)

// ClarityValue is the subset of Clarity values the ticket contract exchanges.
// Exactly one field is meaningful, selected by Kind.
type ClarityValue struct {
	Kind   byte
	Int    *big.Int
	Bool   bool
	String string
	Some   *ClarityValue
	Tuple  map[string]ClarityValue
}

// two128 offsets signed ints into their 128-bit two's complement form.
var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

func Int(n int64) ClarityValue {
	return ClarityValue{Kind: clarityInt, Int: big.NewInt(n)}
}

func UInt(n uint64) ClarityValue {
	return ClarityValue{Kind: clarityUInt, Int: new(big.Int).SetUint64(n)}
}

func StringASCII(s string) ClarityValue {
	return ClarityValue{Kind: clarityStringASCII, String: s}
}

func Tuple(fields map[string]ClarityValue) ClarityValue {
	return ClarityValue{Kind: clarityTuple, Tuple: fields}
}

func Some(v ClarityValue) ClarityValue {
	return ClarityValue{Kind: claritySome, Some: &v}
}

func None() ClarityValue {
	return ClarityValue{Kind: clarityNone}
}

// StringField reads a string-ascii tuple field.
func (v ClarityValue) StringField(name string) (string, bool) {
	f, ok := v.Tuple[name]
	if !ok || f.Kind != clarityStringASCII {
		return "", false
	}
	return f.String, true
}

// IsNone reports whether v is the optional none.
func (v ClarityValue) IsNone() bool {
	return v.Kind == clarityNone
}

// Serialize encodes v. Tuple keys are written in sorted order as Clarity requires.
func (v ClarityValue) Serialize() ([]byte, error) {
	var buf []byte
	return v.appendTo(buf)
}

// HexString is the 0x-prefixed serialization used in API bodies.
func (v ClarityValue) HexString() (string, error) {
	b, err := v.Serialize()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

func (v ClarityValue) appendTo(buf []byte) ([]byte, error) {
	switch v.Kind {
	case clarityInt, clarityUInt:
		word, err := v.word()
		if err != nil {
			return nil, err
		}
		return append(append(buf, v.Kind), word[:]...), nil
	case clarityBoolTrue, clarityBoolFalse:
		return append(buf, v.Kind), nil
	case clarityNone:
		return append(buf, clarityNone), nil
	case claritySome:
		if v.Some == nil {
			return nil, errors.New("clarity some without value")
		}
		return v.Some.appendTo(append(buf, claritySome))
	case clarityStringASCII:
		buf = append(buf, clarityStringASCII)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(v.String)))
		return append(buf, v.String...), nil
	case clarityTuple:
		keys := make([]string, 0, len(v.Tuple))
		for k := range v.Tuple {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf = append(buf, clarityTuple)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(keys)))
		for _, k := range keys {
			if len(k) > 128 {
				return nil, fmt.Errorf("clarity tuple key %q too long", k)
			}
			buf = append(buf, byte(len(k)))
			buf = append(buf, k...)
			var err error
			if buf, err = v.Tuple[k].appendTo(buf); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	return nil, fmt.Errorf("unsupported clarity type 0x%02x", v.Kind)
}

// word is the 16-byte big-endian form of an int or uint. Signed ints use
// two's complement.
func (v ClarityValue) word() ([16]byte, error) {
	var word [16]byte
	if v.Int == nil {
		return word, errors.New("clarity integer missing")
	}
	n := v.Int
	switch {
	case v.Kind == clarityUInt && (n.Sign() < 0 || n.BitLen() > 128):
		return word, errors.New("clarity uint out of range")
	case v.Kind == clarityInt && n.Sign() >= 0 && n.BitLen() > 127:
		return word, errors.New("clarity int out of range")
	case v.Kind == clarityInt && n.Sign() < 0:
		n = new(big.Int).Add(n, two128)
		if n.Sign() < 0 || n.BitLen() < 128 {
			return word, errors.New("clarity int out of range")
		}
	}
	n.FillBytes(word[:])
	return word, nil
}

// DecodeHex parses a 0x-prefixed serialized value.
func DecodeHex(s string) (ClarityValue, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return ClarityValue{}, fmt.Errorf("decode clarity hex: %w", err)
	}
	v, rest, err := decode(raw)
	if err != nil {
		return ClarityValue{}, err
	}
	if len(rest) != 0 {
		return ClarityValue{}, errors.New("trailing bytes after clarity value")
	}
	return v, nil
}

var errShort = errors.New("clarity value truncated")

func decode(b []byte) (ClarityValue, []byte, error) {
	if len(b) == 0 {
		return ClarityValue{}, nil, errShort
	}
	kind, b := b[0], b[1:]
	switch kind {
	case clarityInt, clarityUInt:
		if len(b) < 16 {
			return ClarityValue{}, nil, errShort
		}
		n := new(big.Int).SetBytes(b[:16])
		if kind == clarityInt && b[0]&0x80 != 0 {
			n.Sub(n, two128)
		}
		return ClarityValue{Kind: kind, Int: n}, b[16:], nil
	case clarityBoolTrue, clarityBoolFalse:
		return ClarityValue{Kind: kind, Bool: kind == clarityBoolTrue}, b, nil
	case clarityNone:
		return ClarityValue{Kind: clarityNone}, b, nil
	case claritySome:
		inner, rest, err := decode(b)
		if err != nil {
			return ClarityValue{}, nil, err
		}
		return ClarityValue{Kind: claritySome, Some: &inner}, rest, nil
	case clarityStringASCII:
		if len(b) < 4 {
			return ClarityValue{}, nil, errShort
		}
		n := binary.BigEndian.Uint32(b)
		b = b[4:]
		if uint32(len(b)) < n {
			return ClarityValue{}, nil, errShort
		}
		return ClarityValue{Kind: clarityStringASCII, String: string(b[:n])}, b[n:], nil
	case clarityTuple:
		if len(b) < 4 {
			return ClarityValue{}, nil, errShort
		}
		count := binary.BigEndian.Uint32(b)
		b = b[4:]
		// Each field takes at least a name length byte and a type byte.
		if uint64(count) > uint64(len(b))/2 {
			return ClarityValue{}, nil, errShort
		}
		fields := make(map[string]ClarityValue, count)
		for range count {
			if len(b) < 1 {
				return ClarityValue{}, nil, errShort
			}
			n := int(b[0])
			b = b[1:]
			if len(b) < n {
				return ClarityValue{}, nil, errShort
			}
			name := string(b[:n])
			var (
				field ClarityValue
				err   error
			)
			field, b, err = decode(b[n:])
			if err != nil {
				return ClarityValue{}, nil, err
			}
			fields[name] = field
		}
		return ClarityValue{Kind: clarityTuple, Tuple: fields}, b, nil
	}
	return ClarityValue{}, nil, fmt.Errorf("unsupported clarity type 0x%02x", kind)
}

// uintField reads a uint tuple field as an int.
func (v ClarityValue) uintField(name string) (int, error) {
	f, ok := v.Tuple[name]
	if !ok || f.Kind != clarityUInt || f.Int == nil {
		return 0, fmt.Errorf("clarity tuple missing uint field %q", name)
	}
	if !f.Int.IsInt64() || f.Int.Int64() > int64(^uint32(0)>>1) {
		return 0, fmt.Errorf("clarity field %q out of range", name)
	}
	return int(f.Int.Int64()), nil
}
