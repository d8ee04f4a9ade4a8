package pages

import (
	"context"

	"github.com/dberzins/camagru/internal/router"
)

// VerifyPage consumes the emailed verification token
// ("/verify?token=..."). Public: the user is typically not signed in yet.
type VerifyPage struct {
	env *Env
}

func NewVerifyPage(env *Env) *VerifyPage {
	return &VerifyPage{env: env}
}

func (p *VerifyPage) Init(ctx context.Context, _, query map[string]string) error {
	token := query["token"]
	if token == "" {
		p.env.printf("The verification link is missing its token.")
		p.env.printf("open /login")
		return nil
	}

	if err := p.env.API.VerifyEmail(ctx, token); err != nil {
		p.env.printf("Verification failed: %v", err)
		p.env.printf("open /login")
		return nil
	}

	p.env.printf("Email verified. You can sign in now.")
	return router.Redirect("/login")
}
