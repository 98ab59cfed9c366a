package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/postbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandValidation(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "x"}); err == nil {
		t.Fatal("expected error for missing slash")
	}
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop}); err == nil {
		t.Fatal("expected error for missing description")
	}
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "x"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "y"}); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestLookupCommandByAlias(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "x", Aliases: []string{"new"}})

	for _, name := range []string{"/start", "start", "/new", "new"} {
		key, _, ok := reg.LookupCommand(name)
		if !ok || key != "/start" {
			t.Fatalf("LookupCommand(%q) = %q, %v", name, key, ok)
		}
	}
	if _, _, ok := reg.LookupCommand("/old"); ok {
		t.Fatal("unexpected match for /old")
	}
}

func TestListCommandsViews(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "x", AdminOnly: true})
	_ = reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "h"})
	_ = reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "d", Hidden: true})

	if got := reg.ListCommands(false); len(got) != 1 || got[0].Text != "/help" {
		t.Fatalf("public menu = %v", got)
	}
	got := reg.ListCommands(true)
	if len(got) != 2 || got[0].Text != "/help" || got[1].Text != "/start" {
		t.Fatalf("admin menu = %v", got)
	}
}

func TestRegisterCallbackDuplicate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("publish", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("publish", noop); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, ok := reg.GetCallback("publish"); !ok {
		t.Fatal("callback not found")
	}
}

func TestRegistrationErrors(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("", noop); !errors.Is(err, ErrInvalidRegistration) {
		t.Fatalf("empty unique: %v", err)
	}
	_ = reg.RegisterCallback("edit", noop)
	if err := reg.RegisterCallback("edit", noop); !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("duplicate: %v", err)
	}
	if got := reg.ListCallbacks(); len(got) != 1 || got[0] != "edit" {
		t.Fatalf("ListCallbacks = %v", got)
	}
	cmds := reg.Commands()
	cmds["/x"] = commands.Command{}
	if _, _, ok := reg.LookupCommand("/x"); ok {
		t.Fatal("Commands must return a copy")
	}
	reg.SetCallbackNotFound(nil)
	if reg.CallbackNotFound() == nil {
		t.Fatal("nil must not replace the not-found handler")
	}
}
