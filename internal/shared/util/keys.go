package util

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	randomSuffix   = 6
)

// GenerateStorageKey returns "{prefix/}{epochMillis}-{random}-{base}.{ext}" for
// originalName. The random part comes from crypto/rand and keeps keys minted
// in the same millisecond apart.
func GenerateStorageKey(originalName, prefix string) string {
	base, ext := splitExt(SanitizeFileName(originalName))
	name := strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + randomBase36(randomSuffix) + "-" + base
	if ext != "" {
		name += "." + ext
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func randomBase36(n int) string {
	max := big.NewInt(int64(len(base36Alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = base36Alphabet[time.Now().UnixNano()%int64(len(base36Alphabet))]
			continue
		}
		out[i] = base36Alphabet[idx.Int64()]
	}
	return string(out)
}
