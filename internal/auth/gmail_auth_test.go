package auth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const clientSecret = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: time.Unix(1700000000, 0).UTC()}

	require.NoError(t, SaveToken(path, want))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := TokenFromFile(path)
	require.NoError(t, err)
	require.Equal(t, want.AccessToken, got.AccessToken)
	require.Equal(t, want.RefreshToken, got.RefreshToken)
	require.True(t, want.Expiry.Equal(got.Expiry))
}

func TestNewGmailService(t *testing.T) {
	dir := t.TempDir()
	cred := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(cred, []byte(clientSecret), 0600))

	config, err := GmailConfig(cred)
	require.NoError(t, err)
	require.True(t, strings.Contains(AuthCodeURL(config), "access_type=offline"))

	_, err = NewGmailService(context.Background(), cred, filepath.Join(dir, "missing.json"))
	require.ErrorContains(t, err, "cmd/gmailtoken")

	tok := filepath.Join(dir, "token.json")
	require.NoError(t, SaveToken(tok, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	svc, err := NewGmailService(context.Background(), cred, tok)
	require.NoError(t, err)
	require.NotNil(t, svc.Users)

	_, err = GmailConfig(filepath.Join(dir, "nope.json"))
	require.Error(t, err)
}
