package main

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"twitchDeck/internal/domain"
)

const twitchAuthorizeURL = "https://id.twitch.tv/oauth2/authorize"

func newScopesCommand() *cobra.Command {
	var clientID, redirectURI string
	cmd := &cobra.Command{
		Use:   "scopes",
		Short: "Print the required scopes and an implicit-grant authorize URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrinter(cmd)
			url := ""
			if clientID != "" {
				url = authorizeURL(clientID, redirectURI, uuid.NewString())
			}
			if p.jsonMode {
				return p.JSON(map[string]any{
					"scopes":        domain.RequiredScopes,
					"authorize_url": url,
				})
			}
			p.Linef("%s", strings.Join(domain.RequiredScopes, " "))
			if url != "" {
				p.Linef("%s", url)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "application client id")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "http://localhost:3000", "registered redirect URI")
	return cmd
}

// authorizeURL builds a token (implicit grant) URL asking for every required scope.
func authorizeURL(clientID, redirectURI, state string) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      domain.RequiredScopes,
		Endpoint:    oauth2.Endpoint{AuthURL: twitchAuthorizeURL},
	}
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token"))
}
