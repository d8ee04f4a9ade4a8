package pages

import (
	"context"

	"github.com/dberzins/camagru/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// LoginPage signs the user in and moves them to the feed.
type LoginPage struct {
	env *Env
}

func NewLoginPage(env *Env) *LoginPage {
	return &LoginPage{env: env}
}

func (p *LoginPage) Init(ctx context.Context, _, _ map[string]string) error {
	p.env.printf("-- Sign in --")
	p.env.printf("%s", p.Commands())
	return nil
}

func (p *LoginPage) Commands() string {
	return "login | open /register | open /forgot-password"
}

func (p *LoginPage) Exec(ctx context.Context, cmd string, _ []string) error {
	if cmd != "login" {
		return ErrUnknownCommand
	}

	username, err := getSimpleText(p.env.In, "Username", p.env.Out)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", p.env.Out)
	if err != nil {
		return err
	}
	defer wipe(password)

	data, err := p.env.API.Login(ctx, username, string(password))
	if err != nil {
		p.env.printf("Login failed: %v", err)
		return nil
	}

	user := &session.User{ID: data.UserID, Username: data.Username}
	if err := p.env.Store.SetAuth(ctx, data.Token, user); err != nil {
		return err
	}

	// Best effort: fill in the full profile. The session works without it.
	if me, err := p.env.API.Me(ctx, false); err == nil {
		_ = p.env.Store.SetUser(ctx, me)
	}

	p.env.printf("Welcome, %s!", data.Username)
	return p.env.Router.Navigate(ctx, "/")
}
