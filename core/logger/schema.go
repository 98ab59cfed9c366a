package logger

import "strings"

// Level names written in the level field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return LevelInfo
	case "warning":
		return LevelWarn
	}
	return strings.ToUpper(strings.TrimSpace(level))
}

// enum is a closed set of values for a field. Values outside the set are
// kept as written when keepUnknown is set and dropped otherwise.
type enum struct {
	values      []string
	keepUnknown bool
}

var enums = map[string]enum{
	"status":  {values: []string{"ok", "fail", "skip", "retry", "rate_limited", "cancelled"}, keepUnknown: true},
	"outcome": {values: []string{"ok", "fail", "cancelled", "rate_limited"}},
}

func (e enum) normalize(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, allowed := range e.values {
		if v == allowed {
			return v, true
		}
	}
	return v, e.keepUnknown && v != ""
}

// defaultKeyOrder fixes the leading columns of every line. Keys not listed
// follow in alphabetical order.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "draft_id", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "op", "cb_key", "outcome", "duration_ms",
	"messages", "kb", "count", "payload", "lang", "username",
	"mode", "listen", "public_url", "http_code",
	"db", "host", "port",
	"state", "from_state", "kind", "media_kind", "media_count",
	"destination", "replaced", "had_draft", "evicted", "drafts",
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms",
	"pending_count",
}
