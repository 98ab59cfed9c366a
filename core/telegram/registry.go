package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/core/telegram/commands"
)

const wireComponent = "tg.wire"

var (
	// ErrInvalidRegistration reports an empty name or nil handler.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrDuplicateRegistration reports a name that is already taken.
	ErrDuplicateRegistration = errors.New("already registered")
)

// Registry maps command names and callback uniques to handlers. It is
// filled during wiring and read concurrently by the routers afterwards.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	callbacks map[string]tele.HandlerFunc
	notFound  tele.HandlerFunc
}

// NewRegistry returns an empty Registry whose unknown-callback handler
// answers "Unsupported action".
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		notFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

// RegisterCommand adds cmd under name, which must start with a slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		return rejected("command", name, ErrInvalidRegistration)
	case !strings.HasPrefix(name, "/"):
		return rejected("command", name, fmt.Errorf("%w: missing slash", ErrInvalidRegistration))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[name]; ok {
		return rejected("command", name, ErrDuplicateRegistration)
	}
	r.commands[name] = cmd
	return nil
}

// RegisterCallback maps a button unique to its handler.
func (r *Registry) RegisterCallback(unique string, h tele.HandlerFunc) error {
	if unique == "" || h == nil {
		return rejected("callback", unique, ErrInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.callbacks[unique]; ok {
		return rejected("callback", unique, ErrDuplicateRegistration)
	}
	r.callbacks[unique] = h
	return nil
}

func rejected(kind, name string, err error) error {
	logger.Warn(logger.Background(), wireComponent, "register."+kind+".reject",
		slog.String("name", name),
		slog.String("err", err.Error()),
	)
	return fmt.Errorf("%s %q: %w", kind, name, err)
}

// ListCommands returns menu entries sorted by name. Hidden commands never
// appear; admin-only ones only in the admin view.
func (r *Registry) ListCommands(adminView bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var menu []tele.Command
	for name, cmd := range r.commands {
		if cmd.Hidden || (cmd.AdminOnly && !adminView) {
			continue
		}
		menu = append(menu, tele.Command{Text: name, Description: cmd.Description})
	}
	slices.SortFunc(menu, func(a, b tele.Command) int { return strings.Compare(a.Text, b.Text) })
	return menu
}

// LookupCommand resolves name, with or without the slash, by key first and
// then by alias. It returns the canonical key.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		if cmd.Matches(name) {
			return key, cmd, true
		}
	}
	return "", commands.Command{}, false
}

// Commands returns a copy of the registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// GetCallback returns the handler registered for unique.
func (r *Registry) GetCallback(unique string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[unique]
	return h, ok
}

// ListCallbacks returns the registered uniques, sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SetCallbackNotFound replaces the handler for unknown callbacks; nil is ignored.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.notFound = h
	r.mu.Unlock()
}

// CallbackNotFound returns the handler for unknown callbacks.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notFound
}

// InitBotCommands publishes the public menu to the default scope and, when
// adminID is set, the admin view to the operator's chat.
func InitBotCommands(bot *tele.Bot, reg *Registry, adminID int64) {
	setMenu(bot, "default", reg.ListCommands(false))
	if adminID != 0 {
		setMenu(bot, "admin", reg.ListCommands(true),
			tele.CommandScope{Type: tele.CommandScopeChat, ChatID: adminID})
	}
}

func setMenu(bot *tele.Bot, name string, menu []tele.Command, scope ...tele.CommandScope) {
	args := []any{menu}
	for _, sc := range scope {
		args = append(args, sc)
	}
	ctx := logger.Background()
	if err := bot.SetCommands(args...); err != nil {
		logger.Error(ctx, wireComponent, "register.commands.set_failed",
			slog.String("scope", name),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Debug(ctx, wireComponent, "register.commands.set",
		slog.String("scope", name),
		slog.Int("commands", len(menu)),
	)
}
