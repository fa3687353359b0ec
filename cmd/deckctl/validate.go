package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	twitchinfra "twitchDeck/internal/infrastructure/platform/twitch"
	"twitchDeck/internal/usecase/credentials"
	"twitchDeck/internal/usecase/inspector"
)

var errInvalid = errors.New("settings are invalid")

type validateOutput struct {
	Valid         bool                        `json:"valid"`
	Errors        []inspector.ValidationError `json:"errors,omitempty"`
	Warnings      []string                    `json:"warnings,omitempty"`
	Login         string                      `json:"login,omitempty"`
	TokenValid    *bool                       `json:"token_valid,omitempty"`
	MissingScopes []string                    `json:"missing_scopes,omitempty"`
}

func newValidateCommand() *cobra.Command {
	var (
		form     inspector.Form
		online   bool
		helixURL string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check global settings the way the property inspector does",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, form, online, helixURL)
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Channel, "channel", "", "Twitch channel login")
	f.StringVar(&form.Token, "token", "", "user access token")
	f.StringVar(&form.BroadcasterID, "broadcaster-id", "", "numeric broadcaster id")
	f.StringVar(&form.ModeratorID, "moderator-id", "", "numeric moderator id (optional)")
	f.StringVar(&form.ClientID, "client-id", "", "application client id, needed for --online")
	f.BoolVar(&online, "online", false, "also validate the token against Twitch")
	f.StringVar(&helixURL, "helix-url", twitchinfra.DefaultHelixBaseURL, "Helix base URL")
	return cmd
}

func runValidate(cmd *cobra.Command, form inspector.Form, online bool, helixURL string) error {
	p := newPrinter(cmd)
	report := inspector.Validate(form)
	out := validateOutput{
		Valid:    report.OK(),
		Errors:   report.Errors,
		Warnings: report.Warnings,
	}

	if online && report.OK() {
		svc, err := twitchinfra.NewModerationService(twitchinfra.Options{
			ClientID:    form.ClientID,
			AccessToken: form.Token,
			BaseURL:     helixURL,
		})
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		result, err := credentials.Check(ctx, svc, form.Token)
		if err != nil {
			return err
		}
		valid := result.Info.Valid
		out.TokenValid = &valid
		out.Login = result.Info.Login
		out.MissingScopes = result.MissingScopes
		out.Valid = out.Valid && result.OK()
	}

	if p.jsonMode {
		if err := p.JSON(out); err != nil {
			return err
		}
	} else {
		for _, e := range out.Errors {
			p.Linef("error   %s: %s", e.Field, e.Message)
		}
		for _, w := range out.Warnings {
			p.Linef("warning %s", w)
		}
		if out.TokenValid != nil {
			if *out.TokenValid {
				p.Linef("token   valid for %s", out.Login)
			} else {
				p.Linef("token   invalid or expired")
			}
			for _, s := range out.MissingScopes {
				p.Linef("scope   missing %s", s)
			}
		}
		if out.Valid {
			p.Linef("ok")
		}
	}

	if !out.Valid {
		return fmt.Errorf("validate: %w", errInvalid)
	}
	return nil
}
