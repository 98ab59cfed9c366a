package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"
)

// orderedKeys lists the keys of rec: those named in order first, the rest
// sorted.
func orderedKeys(rec record, order []string) []string {
	keys := make([]string, 0, len(rec))
	listed := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := rec[k]; ok && !listed[k] {
			keys = append(keys, k)
		}
		listed[k] = true
	}
	var rest []string
	for k := range rec {
		if !listed[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func encode(format logFormat, rec record, order []string) ([]byte, error) {
	if format == formatJSON {
		return encodeJSON(rec, order)
	}
	return encodeKV(rec, order), nil
}

func encodeJSON(rec record, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range orderedKeys(rec, order) {
		v, err := json.Marshal(rec[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeKV(rec record, order []string) []byte {
	var buf bytes.Buffer
	for i, k := range orderedKeys(rec, order) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(kvValue(rec[k]))
	}
	return buf.Bytes()
}

func kvValue(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.IndexFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) >= 0 {
		return strconv.Quote(s)
	}
	return s
}
