package resolver

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"dicomviewer/internal/metadata/parser"
	strutil "dicomviewer/pkg/platform/strings"
)

// maxBlobBytes caps the hex rendering of binary values.
const maxBlobBytes = 64

// Decode renders one element value as display text according to its VR.
func Decode(el parser.RawElement) string {
	order := el.Order
	if order == nil {
		order = binary.LittleEndian
	}
	switch el.VR {
	case "AE", "CS", "LO", "LT", "PN", "SH", "ST", "UC", "UI", "UR", "UT", "AS":
		return strutil.TrimPadding(string(el.Value))
	case "DS", "IS":
		return strings.TrimLeft(strutil.TrimPadding(string(el.Value)), " ")
	case "DA", "DT", "TM":
		return strutil.TrimPadding(string(el.Value))
	case "US":
		return joinNumbers(el.Value, 2, func(b []byte) string { return strconv.FormatUint(uint64(order.Uint16(b)), 10) })
	case "SS":
		return joinNumbers(el.Value, 2, func(b []byte) string { return strconv.FormatInt(int64(int16(order.Uint16(b))), 10) })
	case "UL":
		return joinNumbers(el.Value, 4, func(b []byte) string { return strconv.FormatUint(uint64(order.Uint32(b)), 10) })
	case "SL":
		return joinNumbers(el.Value, 4, func(b []byte) string { return strconv.FormatInt(int64(int32(order.Uint32(b))), 10) })
	case "UV":
		return joinNumbers(el.Value, 8, func(b []byte) string { return strconv.FormatUint(order.Uint64(b), 10) })
	case "SV":
		return joinNumbers(el.Value, 8, func(b []byte) string { return strconv.FormatInt(int64(order.Uint64(b)), 10) })
	case "FL":
		return joinNumbers(el.Value, 4, func(b []byte) string {
			return strconv.FormatFloat(float64(math.Float32frombits(order.Uint32(b))), 'g', -1, 32)
		})
	case "FD":
		return joinNumbers(el.Value, 8, func(b []byte) string {
			return strconv.FormatFloat(math.Float64frombits(order.Uint64(b)), 'g', -1, 64)
		})
	case "AT":
		return joinNumbers(el.Value, 4, func(b []byte) string {
			return fmt.Sprintf("(%04x,%04x)", order.Uint16(b), order.Uint16(b[2:]))
		})
	case "SQ":
		return ""
	case "OB", "OD", "OF", "OL", "OV", "OW":
		return hexBlob(el.Value)
	default:
		if isPrintable(el.Value) {
			return strutil.TrimPadding(string(el.Value))
		}
		return hexBlob(el.Value)
	}
}

// joinNumbers decodes fixed-width values separated by a backslash. Trailing
// bytes that do not make a whole value are shown as hex so nothing is
// silently dropped.
func joinNumbers(b []byte, width int, format func([]byte) string) string {
	n := len(b) / width
	parts := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		parts = append(parts, format(b[i*width:(i+1)*width]))
	}
	if rest := b[n*width:]; len(rest) > 0 {
		parts = append(parts, hex.EncodeToString(rest))
	}
	return strings.Join(parts, `\`)
}

func hexBlob(b []byte) string {
	if len(b) > maxBlobBytes {
		return hex.EncodeToString(b[:maxBlobBytes]) + "..."
	}
	return hex.EncodeToString(b)
}

func isPrintable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r == 0 {
			continue
		}
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
