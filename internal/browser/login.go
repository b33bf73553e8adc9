package browser

import (
	"context"
	"time"

	"github.com/go-rod/rod/lib/proto"

	errs "tokclean/pkg/errors"
)

// login signs the session in with the configured method. Both methods
// finish by polling for the profile icon, so a human can step in for
// captchas, 2FA or the whole OAuth dance in the visible browser window.
func (d *Driver) login(ctx context.Context) error {
	method := d.creds.LoginMethod
	if method == "" {
		method = "email"
	}

	d.logger.WithField("method", method).Info("Logging in to TikTok")

	switch method {
	case "google":
		return d.loginWithGoogle(ctx)
	default:
		return d.loginWithEmail(ctx)
	}
}

// loginWithEmail fills the email login form and submits it
func (d *Driver) loginWithEmail(ctx context.Context) error {
	if err := d.navigate(ctx, d.baseURL()+"/login/phone-or-email/email"); err != nil {
		return err
	}

	if err := d.fillLoginForm(ctx); err != nil {
		// The form changes often enough that a failed fill is not
		// fatal; the user can type the credentials themselves.
		d.logger.WithError(err).Warn("Could not fill login form, complete the login in the browser window")
	}

	return d.waitLoggedIn(ctx, emailLoginTimeout)
}

// fillLoginForm types the credentials into the email login form
func (d *Driver) fillLoginForm(ctx context.Context) error {
	page := d.page.Context(ctx)

	username, err := page.Timeout(10 * time.Second).Element(`input[name="username"]`)
	if err != nil {
		username, err = page.Timeout(5 * time.Second).Element(`input[type="text"]`)
		if err != nil {
			return errs.Wrap(errs.ErrorTypeLogin, "username field not found", err)
		}
	}
	if err := username.Input(d.creds.Username); err != nil {
		return errs.Wrap(errs.ErrorTypeLogin, "failed to type username", err)
	}

	password, err := page.Timeout(5 * time.Second).Element(`input[type="password"]`)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeLogin, "password field not found", err)
	}
	if err := password.Input(d.creds.Password); err != nil {
		return errs.Wrap(errs.ErrorTypeLogin, "failed to type password", err)
	}

	submit, err := page.Timeout(5 * time.Second).Element(`button[type="submit"]`)
	if err != nil {
		submit, err = page.Timeout(5 * time.Second).ElementR("button", "/log in/i")
		if err != nil {
			return errs.Wrap(errs.ErrorTypeLogin, "login button not found", err)
		}
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errs.Wrap(errs.ErrorTypeLogin, "failed to click login button", err)
	}

	return nil
}

// loginWithGoogle clicks through to Google OAuth. The sign-in itself
// happens in the browser window; we only wait for the result.
func (d *Driver) loginWithGoogle(ctx context.Context) error {
	if err := d.navigate(ctx, d.baseURL()+"/login"); err != nil {
		return err
	}

	page := d.page.Context(ctx)

	button, err := page.Timeout(10 * time.Second).ElementR("div, a, button, p", "/continue with google/i")
	if err != nil {
		button, err = page.Timeout(5 * time.Second).Element(`[aria-label*="Google"], [title*="Google"]`)
	}
	if err != nil {
		return errs.Wrap(errs.ErrorTypeLogin, "Google login button not found", err)
	}

	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errs.Wrap(errs.ErrorTypeLogin, "failed to click Google login button", err)
	}

	d.logger.Info("Complete the Google sign-in in the browser window (account, password, 2FA)")

	return d.waitLoggedIn(ctx, googleLoginTimeout)
}

// waitLoggedIn polls for the profile icon that marks a signed-in page
func (d *Driver) waitLoggedIn(ctx context.Context, timeout time.Duration) error {
	d.logger.Info("Waiting for login to complete")

	if _, err := d.page.Context(ctx).Timeout(timeout).Element(selProfileIcon); err != nil {
		return errs.Wrap(errs.ErrorTypeLogin, "login did not complete in time", err)
	}

	d.logger.Info("Login successful")
	return nil
}
