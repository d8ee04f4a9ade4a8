package pages

import "context"

// SettingsPage edits the signed-in user's account: username, email,
// password, comment-notification emails, and signing out.
type SettingsPage struct {
	env *Env
}

func NewSettingsPage(env *Env) *SettingsPage {
	return &SettingsPage{env: env}
}

func (p *SettingsPage) Init(ctx context.Context, _, _ map[string]string) error {
	p.render()
	p.env.printf("%s", p.Commands())
	return nil
}

func (p *SettingsPage) Commands() string {
	return "username <new> | email <new> | password | notify | logout | open /"
}

func (p *SettingsPage) render() {
	user := p.env.Store.User()
	if user == nil {
		p.env.printf("-- Settings --")
		return
	}
	p.env.printf("-- Settings: %s --", user.Username)
	p.env.printf("email: %s", user.Email)
	notify := "off"
	if user.NotificationsEnabled {
		notify = "on"
	}
	p.env.printf("comment notifications: %s", notify)
}

func (p *SettingsPage) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "username":
		if len(args) != 1 {
			p.env.printf("Usage: username <new>")
			return nil
		}
		return p.updateUsername(ctx, args[0])

	case "email":
		if len(args) != 1 {
			p.env.printf("Usage: email <new>")
			return nil
		}
		return p.updateEmail(ctx, args[0])

	case "password":
		return p.updatePassword(ctx)

	case "notify":
		return p.toggleNotifications(ctx)

	case "logout":
		return p.logout(ctx)
	}
	return ErrUnknownCommand
}

func (p *SettingsPage) updateUsername(ctx context.Context, username string) error {
	if err := validateUsername(username); err != nil {
		p.env.printf("%v", err)
		return nil
	}
	if err := p.env.API.UpdateUsername(ctx, username); err != nil {
		p.env.printf("Update failed: %v", err)
		return nil
	}
	return p.refresh(ctx, "Username updated")
}

func (p *SettingsPage) updateEmail(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		p.env.printf("%v", err)
		return nil
	}
	if err := p.env.API.UpdateEmail(ctx, email); err != nil {
		p.env.printf("Update failed: %v", err)
		return nil
	}
	// A changed address needs verifying again.
	return p.refresh(ctx, "Email updated. Check your mailbox for the verification link.")
}

func (p *SettingsPage) updatePassword(ctx context.Context) error {
	current, err := getPassword("Current password", p.env.Out)
	if err != nil {
		return err
	}
	defer wipe(current)

	next, err := getPassword("New password", p.env.Out)
	if err != nil {
		return err
	}
	defer wipe(next)
	if err := validatePassword(next); err != nil {
		p.env.printf("%v", err)
		return nil
	}

	if err := p.env.API.UpdatePassword(ctx, string(current), string(next)); err != nil {
		p.env.printf("Update failed: %v", err)
		return nil
	}
	p.env.printf("Password updated")
	return nil
}

func (p *SettingsPage) toggleNotifications(ctx context.Context) error {
	if err := p.env.API.ToggleNotifications(ctx); err != nil {
		p.env.printf("Update failed: %v", err)
		return nil
	}
	return p.refresh(ctx, "Notification preference saved")
}

// refresh re-reads the profile so the session snapshot matches the server,
// then re-renders the page.
func (p *SettingsPage) refresh(ctx context.Context, message string) error {
	if me, err := p.env.API.Me(ctx, false); err == nil {
		_ = p.env.Store.SetUser(ctx, me)
	}
	p.env.printf("%s", message)
	p.render()
	return nil
}

func (p *SettingsPage) logout(ctx context.Context) error {
	if err := p.env.Store.ClearAuth(ctx); err != nil {
		return err
	}
	p.env.printf("Signed out")
	return p.env.Router.Navigate(ctx, "/login")
}
