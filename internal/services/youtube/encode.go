package youtube

import "strings"

const upperHex = "0123456789ABCDEF"

// Encode percent-encodes every byte outside [A-Za-z0-9-_.~]
func Encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

// param is a query parameter; order is kept so URLs are reproducible
type param struct {
	key   string
	value string
}

func buildQuery(params []param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, Encode(p.key)+"="+Encode(p.value))
	}
	return strings.Join(parts, "&")
}
