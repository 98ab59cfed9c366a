package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name        string
		cb          *tele.Callback
		wantKey     string
		wantPayload string
	}{
		{"nil", nil, "", ""},
		{"unique set", &tele.Callback{Unique: "publish", Data: "x"}, "publish", "x"},
		{"encoded", &tele.Callback{Data: "\fskip_media|"}, "skip_media", ""},
		{"encoded payload", &tele.Callback{Data: "\fcancel|draft|1"}, "cancel", "draft|1"},
		{"raw", &tele.Callback{Data: "edit"}, "edit", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tc.cb)
			if key != tc.wantKey || payload != tc.wantPayload {
				t.Fatalf("got (%q, %q), want (%q, %q)", key, payload, tc.wantKey, tc.wantPayload)
			}
		})
	}
}
