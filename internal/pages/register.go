package pages

import (
	"bytes"
	"context"
)

// RegisterPage creates an account. Verification happens out of band: the
// backend mails a link carrying the token the verify page consumes.
type RegisterPage struct {
	env *Env
}

func NewRegisterPage(env *Env) *RegisterPage {
	return &RegisterPage{env: env}
}

func (p *RegisterPage) Init(ctx context.Context, _, _ map[string]string) error {
	p.env.printf("-- Create account --")
	p.env.printf("%s", p.Commands())
	return nil
}

func (p *RegisterPage) Commands() string {
	return "register | open /login"
}

func (p *RegisterPage) Exec(ctx context.Context, cmd string, _ []string) error {
	if cmd != "register" {
		return ErrUnknownCommand
	}

	username, err := getSimpleText(p.env.In, "Username", p.env.Out)
	if err != nil {
		return err
	}
	if err := validateUsername(username); err != nil {
		p.env.printf("%v", err)
		return nil
	}

	email, err := getSimpleText(p.env.In, "Email", p.env.Out)
	if err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		p.env.printf("%v", err)
		return nil
	}

	password, err := getPassword("Password", p.env.Out)
	if err != nil {
		return err
	}
	defer wipe(password)
	if err := validatePassword(password); err != nil {
		p.env.printf("%v", err)
		return nil
	}

	confirm, err := getPassword("Confirm password", p.env.Out)
	if err != nil {
		return err
	}
	defer wipe(confirm)
	if !bytes.Equal(password, confirm) {
		p.env.printf("Passwords do not match")
		return nil
	}

	if err := p.env.API.Register(ctx, username, email, string(password)); err != nil {
		p.env.printf("Registration failed: %v", err)
		return nil
	}

	p.env.printf("Account created. Check your mailbox for the verification link.")
	return p.env.Router.Navigate(ctx, "/login")
}
