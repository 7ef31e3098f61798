package tx

import (
	"fmt"
	"sort"
	"strings"
)

const serializePrefix = "icx_sendTransaction"

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`.`, `\.`,
)

// Serialize renders transaction params in the canonical form that is hashed
// for signing: "icx_sendTransaction." followed by the sorted key.value pairs
// joined with ".". Nested objects render as {k.v...}, arrays as [v...], nil
// as \0, and the characters \ { } [ ] . are backslash escaped.
func Serialize(params map[string]any) []byte {
	var b strings.Builder
	b.WriteString(serializePrefix)
	b.WriteByte('.')
	writeMap(&b, params)
	return []byte(b.String())
}

func writeMap(b *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(k)
		b.WriteByte('.')
		writeValue(b, m[k])
	}
}

func writeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString(`\0`)
	case map[string]any:
		b.WriteByte('{')
		writeMap(b, x)
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteByte('.')
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case string:
		b.WriteString(escaper.Replace(x))
	default:
		b.WriteString(escaper.Replace(fmt.Sprint(x)))
	}
}
