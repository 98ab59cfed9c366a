package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

const timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"

var errNoWriter = errors.New("logger: writer not initialized")

// lineWriter receives one encoded record per call.
type lineWriter interface {
	Write(line []byte) error
}

type handlerConfig struct {
	level slog.Leveler
	out   lineWriter
	// errOut, when set, also receives ERROR lines.
	errOut   lineWriter
	format   logFormat
	keyOrder []string
}

// record holds the flattened fields of one log line.
type record map[string]any

// boundAttr is an attribute added through WithAttrs together with the group
// path that was open at the time.
type boundAttr struct {
	prefix string
	attr   slog.Attr
}

// structuredHandler writes records as kv or json lines with a fixed key
// order, enriched with the request values carried by the context.
type structuredHandler struct {
	cfg    handlerConfig
	bound  []boundAttr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = defaultKeyOrder
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.out == nil {
		return errNoWriter
	}
	json := h.cfg.format == formatJSON

	rec := make(record, 16)
	ts := r.Time.UTC()
	rec["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	rec["level"] = normalizeLevel(r.Level.String())
	if json {
		rec["ts_unix_nano"] = ts.UnixNano()
	}
	for _, b := range h.bound {
		rec.add(b.prefix, b.attr)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		rec.add(prefix, a)
		return true
	})
	rec.fromContext(ctx)
	rec.compactRID(json)
	rec.defaults(r.Message)
	rec.normalize()

	line, err := encode(h.cfg.format, rec, h.cfg.keyOrder)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	err = h.cfg.out.Write(line)
	if h.cfg.errOut != nil && r.Level >= slog.LevelError {
		err = errors.Join(err, h.cfg.errOut.Write(line))
	}
	return err
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.bound = append([]boundAttr(nil), h.bound...)
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		clone.bound = append(clone.bound, boundAttr{prefix: prefix, attr: a})
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// add flattens a into rec, joining group names with dots.
func (rec record) add(prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			rec.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := fieldValue(key, v); ok {
		rec[k] = val
	}
}

func (rec record) fromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	for _, f := range contextFields {
		if _, set := rec[f.key]; set {
			continue
		}
		switch v := f.get(ctx).(type) {
		case string:
			if v != "" {
				rec[f.key] = v
			}
		case int64:
			if v != 0 {
				rec[f.key] = v
			}
		}
	}
}

// compactRID shortens the rid; json lines keep the original as rid_full.
func (rec record) compactRID(json bool) {
	rid, _ := rec["rid"].(string)
	if rid == "" {
		return
	}
	compact := CompactRID(rid)
	if compact == rid {
		return
	}
	if _, set := rec["rid_full"]; json && !set {
		rec["rid_full"] = rid
	}
	rec["rid"] = compact
}

func (rec record) defaults(message string) {
	if ev, _ := rec["event"].(string); ev == "" {
		rec["event"] = message
		if message == "" {
			rec["event"] = "unknown"
		}
	}
	if c, _ := rec["component"].(string); c == "" {
		rec["component"] = "app"
	}
}

// normalize applies the enum tables and drops empty values.
func (rec record) normalize() {
	for key, e := range enums {
		s, ok := rec[key].(string)
		if !ok {
			continue
		}
		if v, keep := e.normalize(s); keep {
			rec[key] = v
		} else {
			delete(rec, key)
		}
	}
	for k, v := range rec {
		if v == nil || v == "" {
			delete(rec, k)
		}
	}
}

// fieldValue converts v to a json friendly value. Durations are written as
// whole milliseconds under a key ending in _ms.
func fieldValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case string:
		return key, strings.TrimSpace(x), true
	case time.Duration:
		return durationKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}
