package commands

import tele "gopkg.in/telebot.v4"

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are listed only in the operator's command menu.
	AdminOnly bool
	Hidden    bool
	// Aliases are matched by the text router, with or without the leading slash.
	Aliases []string
}

// Matches reports whether name is one of the command aliases.
func (c Command) Matches(name string) bool {
	for _, alias := range c.Aliases {
		if alias == name || "/"+alias == name {
			return true
		}
	}
	return false
}
