// internal/declaration/recovery.go
package declaration

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rakanhl/declare-cli/internal/ui"
)

// LoginTimeoutError reports that the post-login landing element never
// appeared. Recurring immediately after a fresh recovery attempt it is fatal
// to the batch.
type LoginTimeoutError struct {
	Timeout time.Duration
}

func (e *LoginTimeoutError) Error() string {
	return fmt.Sprintf("login did not complete within %v", e.Timeout)
}

// Authenticator performs the login handshake on an already-loaded login
// page.
type Authenticator struct {
	page           ui.Page
	landingTimeout time.Duration
	logger         *zap.Logger
}

// NewAuthenticator builds an Authenticator. landingTimeout bounds the wait
// for the post-login landing element, which doubles as the signal that the
// whole handshake worked.
func NewAuthenticator(page ui.Page, landingTimeout time.Duration, logger *zap.Logger) *Authenticator {
	return &Authenticator{page: page, landingTimeout: landingTimeout, logger: logger.Named("auth")}
}

// Login fills the credential fields, activates the login button, and waits
// for the landing element.
func (a *Authenticator) Login(ctx context.Context, creds Credentials) error {
	a.logger.Info("logging in", zap.String("username", creds.Username))

	if err := a.page.Await(ctx, loginUser, ui.Present, a.landingTimeout); err != nil {
		return err
	}
	if err := a.page.Type(ctx, loginUser, creds.Username); err != nil {
		return err
	}
	if err := a.page.Type(ctx, loginPass, creds.Password); err != nil {
		return err
	}
	if err := a.page.Click(ctx, loginButton); err != nil {
		return err
	}

	if err := a.page.Await(ctx, searchItemID, ui.Present, a.landingTimeout); err != nil {
		if ui.IsTimeout(err) {
			return &LoginTimeoutError{Timeout: a.landingTimeout}
		}
		return err
	}
	a.logger.Info("login successful")
	return nil
}

// Recovery re-establishes the authenticated session in place after the UI
// stops responding. The Session identity seen by the batch driver does not
// change; only the page state does.
type Recovery struct {
	page   ui.Page
	auth   *Authenticator
	policy ui.Policy
	logger *zap.Logger
}

// NewRecovery builds a Recovery. policy should be the heavier, growing-delay
// flavor; login is a full page round trip, not a field fill.
func NewRecovery(page ui.Page, auth *Authenticator, policy ui.Policy, logger *zap.Logger) *Recovery {
	return &Recovery{page: page, auth: auth, policy: policy, logger: logger.Named("recovery")}
}

// Recover reloads the page and repeats the login handshake under the
// recovery policy. Exhausting the policy aborts the batch.
func (r *Recovery) Recover(ctx context.Context, creds Credentials) error {
	r.logger.Warn("session unresponsive, re-authenticating")

	err := ui.Do(ctx, r.policy, func(ctx context.Context) error {
		if err := r.page.Reload(ctx); err != nil {
			return err
		}
		return r.auth.Login(ctx, creds)
	})
	if err != nil {
		return fmt.Errorf("session recovery failed: %w", err)
	}
	r.logger.Info("session recovered")
	return nil
}
