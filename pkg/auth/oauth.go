package auth

import (
	"fmt"
	"net/url"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/dayplan/pkg/logger"
)

const (
	// ClientSecretsFile is the Google API credentials.json downloaded from the Cloud Console.
	ClientSecretsFile = "credentials.json"

	// LocalhostAuthPort is the default port the loopback listener captures the redirect on.
	LocalhostAuthPort = "6789"

	redirectPath = "/oauth2callback"
)

// Provider is the fixed discovery document of an OAuth authorization server.
type Provider struct {
	AuthURL   string
	TokenURL  string
	RevokeURL string
}

// Google is the provider the calendar integration authenticates against.
var Google = Provider{
	AuthURL:   google.Endpoint.AuthURL,
	TokenURL:  google.Endpoint.TokenURL,
	RevokeURL: "https://oauth2.googleapis.com/revoke",
}

func (p Provider) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   p.AuthURL,
		TokenURL:  p.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// Scopes requested for calendar sync.
var Scopes = []string{
	calendar.CalendarScope,
	calendar.CalendarEventsScope,
}

// LoadConfig creates an oauth2.Config from a client secrets file, pointed at
// provider and with the redirect forced onto the loopback port.
func LoadConfig(path string, provider Provider, port string, l logger.Logger) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", path, err)
	}

	config, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.Endpoint = provider.Endpoint()
	config.RedirectURL = loopbackRedirect(config.RedirectURL, port, l)
	return config, nil
}

func loopbackRedirect(configured, port string, l logger.Logger) string {
	if port == "" {
		port = LocalhostAuthPort
	}
	fallback := fmt.Sprintf("http://localhost:%s%s", port, redirectPath)

	if configured == "" || configured == "urn:ietf:wg:oauth:2.0:oob" {
		return fallback
	}

	parsed, err := url.Parse(configured)
	if err != nil {
		l.Warn("could not parse redirect URL, using loopback default", "redirect", configured, "error", err)
		return fallback
	}
	if parsed.Hostname() != "localhost" && parsed.Hostname() != "127.0.0.1" {
		l.Warn("redirect URL is not a loopback callback, using loopback default", "redirect", configured)
		return fallback
	}
	if parsed.Port() != port {
		parsed.Host = fmt.Sprintf("%s:%s", parsed.Hostname(), port)
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = redirectPath
	}
	return parsed.String()
}
