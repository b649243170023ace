// Package github provides authenticated GitHub API clients.
package github

import (
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"
)

// NewTokenClient creates a GitHub API client authenticated with a
// personal access token. An empty token yields an anonymous client,
// which is enough for reading public release metadata.
func NewTokenClient(token string) *gogithub.Client {
	client := gogithub.NewClient(nil)
	if token == "" {
		return client
	}
	return client.WithAuthToken(token)
}

// NewAppClient creates a GitHub API client authenticated as a GitHub
// App installation. The ghinstallation transport handles JWT
// generation and token renewal.
func NewAppClient(appID, installationID int64, privateKeyPEM string) (*gogithub.Client, error) {
	transport, err := ghinstallation.New(http.DefaultTransport, appID, installationID, []byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("creating github installation transport: %w", err)
	}
	return gogithub.NewClient(&http.Client{Transport: transport}), nil
}
