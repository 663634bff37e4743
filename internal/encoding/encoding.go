// Package encoding holds the small id and text helpers used by import/export.
package encoding

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz+/"

// Base64 renders v in base 64 using a digits-first alphabet, so that short ids
// sort roughly by magnitude.
func Base64(v uint64) string {
	var buf [11]byte
	i := len(buf)
	for {
		i--
		buf[i] = alphabet[v%64]
		v /= 64
		if v == 0 {
			break
		}
	}
	return string(buf[i:])
}

// B64Time generates a short, probably unique identifier from a timestamp.
func B64Time(now time.Time) string {
	return Base64(uint64(now.UnixMilli()) % 1e11)
}

// ToJSON marshals v and never fails: marshal errors are returned as a quoted
// error string so exporters always have something to show.
func ToJSON(v any, indent string) string {
	var (
		data []byte
		err  error
	)
	if indent == "" {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", indent)
	}
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprintf("%T: %v", err, err))
	}
	return string(data)
}

// Stringifyish quotes s only when it contains whitespace.
func Stringifyish(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return s
	}
	data, _ := json.Marshal(s)
	return string(data)
}
