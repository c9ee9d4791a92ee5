package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/model"
	"github.com/sakif/symvora/internal/navigation"
	"github.com/sakif/symvora/internal/validation"
)

// The account actions below share one shape:
//
//  1. check the form locally; a bad form never reaches the collaborator
//  2. call the account collaborator on the caller's goroutine
//  3. on success, update the session and re-apply the gate through the loop
//
// Failures are reported as error notifications and returned. Nothing is
// retried and the session is left as it was.

// SignUp creates an account and signs the user in.
func (c *Controller) SignUp(ctx context.Context, name, email, password, confirm string) error {
	if err := validation.SignUp(name, email, password, confirm); err != nil {
		return c.reject(err)
	}

	user, err := c.accounts.SignUp(ctx, strings.TrimSpace(name), validation.NormalizeEmail(email), password)
	if err != nil {
		return c.fail(err, "Signup failed")
	}

	c.signIn(user)
	c.notify(NoticeInfo, "Account created!")
	return c.do(c.regate)
}

// Login signs an existing user in.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	if err := validation.Login(email, password); err != nil {
		return c.reject(err)
	}

	user, err := c.accounts.Login(ctx, validation.NormalizeEmail(email), password)
	if err != nil {
		return c.fail(err, "Login failed")
	}

	c.signIn(user)
	c.notify(NoticeInfo, "Logged in!")
	return c.do(c.regate)
}

// Restore asks the collaborator for a saved session at start-up.
// No saved session is not an error.
func (c *Controller) Restore(ctx context.Context) error {
	user, err := c.accounts.LoadCurrentUser(ctx)
	if err != nil {
		c.logger.Warn("could not restore session", slog.String("error", err.Error()))
		return err
	}
	if user == nil {
		return nil
	}

	c.signIn(user)
	return c.do(c.regate)
}

// Logout ends the session and returns to the Welcome screen.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.accounts.Logout(ctx); err != nil {
		// The local session is cleared regardless; a stale server-side
		// token expires on its own.
		c.logger.Warn("logout failed at the account service", slog.String("error", err.Error()))
	}

	c.session.SetUser(nil)
	c.logger.Info("user signed out")
	c.notify(NoticeInfo, "Logged out")

	_, err := c.Navigate(navigation.Welcome)
	return err
}

// UpdateName changes the signed-in user's display name.
func (c *Controller) UpdateName(ctx context.Context, name string) error {
	if !c.session.IsAuthenticated() {
		return c.reject(apperror.Unauthorized("Not authenticated"))
	}
	if err := validation.Name(name); err != nil {
		return c.reject(err)
	}
	name = strings.TrimSpace(name)

	if err := c.accounts.UpdateProfileName(ctx, name); err != nil {
		return c.fail(err, "Failed to update name")
	}

	c.session.UpdateName(name)
	c.notify(NoticeInfo, "Name updated")
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (c *Controller) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if !c.session.IsAuthenticated() {
		return c.reject(apperror.Unauthorized("Not authenticated"))
	}
	if err := validation.PasswordChange(current, next, confirm); err != nil {
		return c.reject(err)
	}

	if err := c.accounts.UpdatePassword(ctx, current, next); err != nil {
		return c.fail(err, "Failed to update password")
	}

	c.notify(NoticeInfo, "Password updated")
	return nil
}

func (c *Controller) signIn(user *model.User) {
	c.session.SetUser(user)
	c.logger.Info("user signed in", slog.String("email", user.Email))
}

// reject reports a form error.
func (c *Controller) reject(err error) error {
	c.notify(NoticeError, apperror.MessageOf(err))
	return err
}

// fail reports a collaborator error, falling back to a generic message.
func (c *Controller) fail(err error, fallback string) error {
	msg := apperror.MessageOf(err)
	if strings.TrimSpace(msg) == "" {
		msg = fallback
	}
	c.logger.Warn(fallback, slog.String("error", err.Error()))
	c.notify(NoticeError, msg)
	return err
}
