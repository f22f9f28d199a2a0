package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
)

// GitHubProfile is the slice of the users API response we surface alongside a
// fetched key.
type GitHubProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// fetchGitHub downloads the armored key a user publishes at
// <raw>/<handle>.gpg and pairs it with their public profile.
func (r *Resolver) fetchGitHub(ctx context.Context, handle string) ([]byte, keystore.Metadata, error) {
	keyURL := fmt.Sprintf("%s/%s.gpg", r.GitHubRawURL, handle)

	body, status, err := r.get(ctx, keyURL)
	if err != nil {
		return nil, keystore.Metadata{}, fmt.Errorf("%w: github unreachable: %v",
			cerrors.ErrDirectoryLookupFailed, err)
	}
	switch {
	case status == http.StatusNotFound:
		return nil, keystore.Metadata{}, fmt.Errorf("%w: github user %q has not published a key",
			cerrors.ErrDirectoryLookupFailed, handle)
	case status != http.StatusOK:
		return nil, keystore.Metadata{}, fmt.Errorf("%w: github returned status %d for %q",
			cerrors.ErrDirectoryLookupFailed, status, handle)
	}
	if len(body) == 0 {
		return nil, keystore.Metadata{}, fmt.Errorf("%w: github user %q has not published a key",
			cerrors.ErrDirectoryLookupFailed, handle)
	}

	profile, err := r.gitHubProfile(ctx, handle)
	if err != nil {
		// The key is the point of the lookup; a missing profile only costs
		// metadata.
		r.Logger.Warnf("Could not fetch GitHub profile for %q: %v", handle, err)
		profile = &GitHubProfile{Login: handle}
	}

	meta := keystore.Metadata{
		Email:    profile.Email,
		Username: profile.Login,
	}
	return body, meta, nil
}

// gitHubProfile looks up the users API, memoizing the result so repeated
// resolves in one process do not re-query.
func (r *Resolver) gitHubProfile(ctx context.Context, handle string) (*GitHubProfile, error) {
	cacheKey := "github:" + handle
	if cached, ok := r.profiles.Get(cacheKey); ok {
		return cached.(*GitHubProfile), nil
	}

	body, status, err := r.get(ctx, fmt.Sprintf("%s/users/%s", r.GitHubAPIURL, handle))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("profile lookup returned status %d", status)
	}

	var profile GitHubProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	r.profiles.Set(cacheKey, &profile, 5*time.Minute)
	return &profile, nil
}
