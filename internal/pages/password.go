package pages

import (
	"bytes"
	"context"
)

// ForgotPasswordPage requests a reset link by email.
type ForgotPasswordPage struct {
	env *Env
}

func NewForgotPasswordPage(env *Env) *ForgotPasswordPage {
	return &ForgotPasswordPage{env: env}
}

func (p *ForgotPasswordPage) Init(ctx context.Context, _, _ map[string]string) error {
	p.env.printf("-- Forgot password --")
	p.env.printf("%s", p.Commands())
	return nil
}

func (p *ForgotPasswordPage) Commands() string {
	return "send | open /login"
}

func (p *ForgotPasswordPage) Exec(ctx context.Context, cmd string, _ []string) error {
	if cmd != "send" {
		return ErrUnknownCommand
	}

	email, err := getSimpleText(p.env.In, "Email", p.env.Out)
	if err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		p.env.printf("%v", err)
		return nil
	}

	if err := p.env.API.ForgotPassword(ctx, email); err != nil {
		p.env.printf("Request failed: %v", err)
		return nil
	}

	// Same message whether the address exists or not.
	p.env.printf("If that address has an account, a reset link is on its way.")
	return nil
}

// ResetPasswordPage sets a new password using the token from the mailed
// reset link ("/reset-password?token=...").
type ResetPasswordPage struct {
	env   *Env
	token string
}

func NewResetPasswordPage(env *Env) *ResetPasswordPage {
	return &ResetPasswordPage{env: env}
}

func (p *ResetPasswordPage) Init(ctx context.Context, _, query map[string]string) error {
	p.token = query["token"]
	if p.token == "" {
		p.env.printf("The reset link is missing its token. Request a new one.")
		p.env.printf("open /forgot-password")
		return nil
	}
	p.env.printf("-- Reset password --")
	p.env.printf("%s", p.Commands())
	return nil
}

func (p *ResetPasswordPage) Commands() string {
	return "reset | open /login"
}

func (p *ResetPasswordPage) Exec(ctx context.Context, cmd string, _ []string) error {
	if cmd != "reset" {
		return ErrUnknownCommand
	}
	if p.token == "" {
		p.env.printf("No reset token. Request a new link first.")
		return nil
	}

	password, err := getPassword("New password", p.env.Out)
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

	if err := p.env.API.ResetPassword(ctx, p.token, string(password)); err != nil {
		p.env.printf("Reset failed: %v", err)
		return nil
	}

	p.env.printf("Password updated. Sign in with the new one.")
	return p.env.Router.Navigate(ctx, "/login")
}
