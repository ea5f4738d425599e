package config

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

const secretScheme = "sm://"

// ResolveSecrets replaces every credential of the form
// sm://project/name with the latest version stored in Secret Manager.
// Plain values pass through untouched, so local setups never need the
// service.
func (c *Config) ResolveSecrets(ctx context.Context) error {
	fields := []*string{
		&c.GroqAPIKey,
		&c.DeepSeekAPIKey,
		&c.YouTubeClientID,
		&c.YouTubeClientSecret,
		&c.FacebookClientID,
		&c.FacebookClientSecret,
	}

	var client *secretmanager.Client
	for _, field := range fields {
		if !strings.HasPrefix(*field, secretScheme) {
			continue
		}
		if client == nil {
			var err error
			client, err = secretmanager.NewClient(ctx)
			if err != nil {
				return fmt.Errorf("create secret manager client: %w", err)
			}
			defer func() { _ = client.Close() }()
		}

		value, err := fetchSecret(ctx, client, *field)
		if err != nil {
			return err
		}
		*field = value
	}
	return nil
}

func fetchSecret(ctx context.Context, client *secretmanager.Client, ref string) (string, error) {
	parts := strings.SplitN(strings.TrimPrefix(ref, secretScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("malformed secret reference %q, want sm://project/name", ref)
	}

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", parts[0], parts[1]),
	})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", ref, err)
	}
	return string(resp.Payload.Data), nil
}
