package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig reads the OAuth client (the app's id) from credFile with
// permission to send mail only.
func GmailConfig(credFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret file: %w", err)
	}
	config, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret file: %w", err)
	}
	return config, nil
}

// NewGmailService builds a Gmail client from the stored user session. The
// token file is created once with cmd/gmailtoken; the server never prompts.
func NewGmailService(ctx context.Context, credFile, tokenFile string) (*gmail.Service, error) {
	config, err := GmailConfig(credFile)
	if err != nil {
		return nil, err
	}
	tok, err := TokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail token (run cmd/gmailtoken first): %w", err)
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

// AuthCodeURL is the consent page a user opens to grant offline access.
func AuthCodeURL(config *oauth2.Config) string {
	return config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// TokenFromFile retrieves a token from a local file.
func TokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// SaveToken writes a token to path, readable by the owner only.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
