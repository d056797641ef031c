package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/avoronovs/papertrail/internal/client/repositories/metadata"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates a new account. The
// server logs the new account in right away, so the session starts
// immediately.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	token, err := a.apiClient.RegisterUser(ctx, email, string(password))
	if err != nil {
		a.logger.Error(ctx, "registration failed", "error", err)
		return err
	}

	fmt.Println("Account created!")
	return a.startSession(ctx, email, token)
}

// Login prompts for credentials and authenticates against the server. On
// success the session token is stored locally and background sync starts.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	token, err := a.apiClient.Login(ctx, email, string(password))
	if err != nil {
		a.logger.Error(ctx, "login failed", "error", err)
		return err
	}

	fmt.Println("Logged in!")
	return a.startSession(ctx, email, token)
}

func (a *App) startSession(ctx context.Context, email, token string) error {
	if err := a.repos.Metadata.Set(ctx, metadata.KeyAccessToken, token); err != nil {
		return err
	}
	if err := a.repos.Metadata.Set(ctx, metadata.KeyUserEmail, email); err != nil {
		return err
	}
	a.email = email
	a.engine.StartAutoSync(ctx, a.config.SyncInterval)
	return nil
}

// Logout stops background sync and drops the stored session. The device id
// is kept so the next login reuses the same registration.
func (a *App) Logout(ctx context.Context) error {
	a.engine.StopAutoSync()

	if err := a.repos.Metadata.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return err
	}
	if err := a.repos.Metadata.Delete(ctx, metadata.KeyUserEmail); err != nil {
		return err
	}

	a.apiClient.SetToken("")
	a.email = ""
	fmt.Println("Logged out")
	return nil
}
