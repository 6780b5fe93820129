package entitlement

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// KeyLength is the length of an activation key.
const KeyLength = 16

// DeviceIDLength is the number of hex characters in a device identifier.
const DeviceIDLength = 8

// ExpectedKey derives the activation key bound to deviceID. The derivation is
// fixed; changing any step breaks keys already handed out.
func ExpectedKey(deviceID string) string {
	cleanID := normalize(deviceID)

	sum := 0
	for i := 0; i < len(cleanID); i++ {
		sum += int(cleanID[i])
	}

	part1 := padLeft(truncate(strconv.Itoa(sum*7), 4), 4, '1')
	part2 := padLeft(truncate(hexSegment(cleanID, 0, 4), 5), 5, '2')
	part3 := padLeft(truncate(hexSegment(cleanID, 4, 8), 5), 5, '3')
	part4 := "88"

	return truncate(part1+part2+part3+part4, KeyLength)
}

// FormatKey groups a key into blocks of four separated by spaces.
func FormatKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key[i:min(i+4, len(key))])
	}
	return b.String()
}

// NewDeviceID draws a fresh 8 character uppercase hex identifier.
func NewDeviceID() string {
	return newDeviceID(rand.IntN)
}

func newDeviceID(intn func(int) int) string {
	const digits = "0123456789ABCDEF"
	b := make([]byte, DeviceIDLength)
	for i := range b {
		b[i] = digits[intn(16)]
	}
	return string(b)
}

// normalize uppercases id and keeps only [0-9A-F].
func normalize(id string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') {
			return r
		}
		return -1
	}, strings.ToUpper(id))
}

// hexSegment parses id[from:to] (clamped to the string) as base 16 and
// renders it in decimal. An empty segment renders as "NaN" so keys for short
// ids stay stable.
func hexSegment(id string, from, to int) string {
	from = min(from, len(id))
	to = min(to, len(id))
	seg := id[from:to]
	if seg == "" {
		return "NaN"
	}
	n, err := strconv.ParseUint(seg, 16, 64)
	if err != nil {
		return "NaN"
	}
	return strconv.FormatUint(n, 10)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func padLeft(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}
