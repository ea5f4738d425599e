package token

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var youtubeScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube",
}

// OAuthConfig builds the Google OAuth configuration used both for the
// interactive connect flow and for background token refresh.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       youtubeScopes,
		RedirectURL:  redirectURL,
	}
}
