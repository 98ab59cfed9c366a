// Package ui holds the user-facing contracts shared by the routers.
package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider answers updates that match no command, no callback and
// no conversation in progress.
type FallbackProvider interface {
	// UnknownText handles plain text from a user with nothing in progress.
	UnknownText() tele.HandlerFunc
	// UnknownMedia handles photos, videos and other attachments likewise.
	UnknownMedia() tele.HandlerFunc
	// UnknownCallback handles buttons whose unique is not registered.
	UnknownCallback() tele.HandlerFunc
}
