package format

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestEscapeV2(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"text", EscapeV2, "50% off. Today!", `50% off\. Today\!`},
		{"every special", EscapeV2, "_*[]()~`>#+-=|{}.!\\", "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!\\\\"},
		{"code", EscapeV2Code, "a`b\\c.d", "a\\`b\\\\c.d"},
		{"url", EscapeV2URL, "https://x.io/a_(b)", `https://x.io/a_(b\)`},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestEntitiesToMarkdownV2Plain(t *testing.T) {
	if got, want := EntitiesToMarkdownV2("Check it.", nil), `Check it\.`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEntitiesToMarkdownV2Bold(t *testing.T) {
	text := "50% off today"
	ents := []tele.MessageEntity{{Type: tele.EntityType("bold"), Offset: 0, Length: 7}}
	if got, want := EntitiesToMarkdownV2(text, ents), "*50% off* today"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEntitiesToMarkdownV2NestedAndLink(t *testing.T) {
	text := "read the docs now"
	ents := []tele.MessageEntity{
		{Type: tele.EntityType("text_link"), Offset: 5, Length: 8, URL: "https://example.com/a_(b)"},
		{Type: tele.EntityType("italic"), Offset: 9, Length: 4},
	}
	want := `read [the _docs_](https://example.com/a_(b\)) now`
	if got := EntitiesToMarkdownV2(text, ents); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEntitiesToMarkdownV2UTF16Offsets(t *testing.T) {
	// The emoji occupies two UTF-16 code units.
	text := "🔥 hot deal"
	ents := []tele.MessageEntity{{Type: tele.EntityType("bold"), Offset: 3, Length: 3}}
	if got, want := EntitiesToMarkdownV2(text, ents), "🔥 *hot* deal"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEntitiesToMarkdownV2Code(t *testing.T) {
	text := "run a.b() now"
	ents := []tele.MessageEntity{{Type: tele.EntityType("code"), Offset: 4, Length: 5}}
	if got, want := EntitiesToMarkdownV2(text, ents), "run `a.b()` now"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEntitiesToMarkdownV2SkipsOutOfRange(t *testing.T) {
	ents := []tele.MessageEntity{{Type: tele.EntityType("bold"), Offset: 2, Length: 40}}
	if got, want := EntitiesToMarkdownV2("hi!", ents), `hi\!`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
