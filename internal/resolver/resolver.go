package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/capsulecli/capsule/internal/configs"
	"github.com/capsulecli/capsule/internal/envelope"
	cerrors "github.com/capsulecli/capsule/internal/errors"
	"github.com/capsulecli/capsule/internal/keystore"
	logger "github.com/capsulecli/capsule/internal/logging"

	"github.com/cenkalti/backoff"
	gocache "github.com/patrickmn/go-cache"
)

// FreshnessWindow is how long a fetched directory record stays valid before
// resolution treats it as absent and re-fetches.
const FreshnessWindow = 24 * time.Hour

// Options configures a resolution.
type Options struct {
	// ForceRefresh re-fetches even when the cached record is fresh.
	ForceRefresh bool

	// BypassProofs skips the Keybase proof-verification gate. Off by
	// default; using it is logged so the choice stays auditable.
	BypassProofs bool
}

// Resolver fetches keys from identity directories, normalizes them into
// registry records, and enforces freshness.
type Resolver struct {
	Store  *keystore.Store
	Client *http.Client
	Logger logger.Logger

	GitHubAPIURL  string
	GitHubRawURL  string
	KeybaseAPIURL string

	// profiles memoizes directory profile lookups within the process, so a
	// resolve immediately following a lookup does not hit the service twice.
	profiles *gocache.Cache
}

// New builds a Resolver over the store using the configured directory
// endpoints.
func New(store *keystore.Store, config *configs.Config, log logger.Logger) *Resolver {
	return &Resolver{
		Store:         store,
		Client:        &http.Client{Timeout: 15 * time.Second},
		Logger:        log,
		GitHubAPIURL:  config.Directories.GitHubAPIURL,
		GitHubRawURL:  config.Directories.GitHubRawURL,
		KeybaseAPIURL: config.Directories.KeybaseAPIURL,
		profiles:      gocache.New(5*time.Minute, 30*time.Second),
	}
}

// Resolve ensures a usable key exists in the registry for the handle on the
// given service ("github" or "keybase"), fetching and caching it if absent or
// stale. The registry name is namespaced as "<service>:<handle>".
func (r *Resolver) Resolve(ctx context.Context, service, handle string, opts Options) (*keystore.Record, error) {
	var origin keystore.Origin
	switch service {
	case "github":
		origin = keystore.OriginGitHub
	case "keybase":
		origin = keystore.OriginKeybase
	default:
		return nil, fmt.Errorf("%w: unknown directory service %q", cerrors.ErrDirectoryLookupFailed, service)
	}

	name := service + ":" + handle

	if !opts.ForceRefresh {
		record, err := r.Store.GetKey(origin, name)
		if err == nil && fresh(record) {
			r.Logger.Debugf("Using cached %s key for %q (fetched %s)", service, handle, record.LastFetchedAt)
			return record, nil
		}
	}

	var (
		bundle []byte
		meta   keystore.Metadata
		err    error
	)
	switch origin {
	case keystore.OriginGitHub:
		bundle, meta, err = r.fetchGitHub(ctx, handle)
	case keystore.OriginKeybase:
		bundle, meta, err = r.fetchKeybase(ctx, handle, opts)
	}
	if err != nil {
		return nil, err
	}

	if err := envelope.ValidatePublicBundle(bundle); err != nil {
		return nil, fmt.Errorf("%w: %s returned a malformed bundle for %q: %v",
			cerrors.ErrInvalidKeyBundle, service, handle, err)
	}

	meta.FetchedAt = time.Now().UTC()
	record, err := r.Store.AddExternalKey(origin, name, bundle, meta)
	if err != nil {
		return nil, err
	}

	r.Logger.Infof("Imported %s key for %q (fingerprint %s)", service, handle, record.Fingerprint)
	return record, nil
}

// fresh reports whether a directory record is inside its validity window.
func fresh(record *keystore.Record) bool {
	if record.LastFetchedAt == nil {
		return false
	}
	return time.Since(*record.LastFetchedAt) < FreshnessWindow
}

// get performs an HTTP GET, retrying transport errors and 5xx responses a few
// times with a constant backoff. 4xx statuses return without retry; the
// caller decides what they mean.
func (r *Resolver) get(ctx context.Context, url string) (body []byte, status int, err error) {
	operation := func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return backoff.Permanent(reqErr)
		}

		resp, doErr := r.Client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return readErr
		}

		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error: %s", resp.Status)
		}

		body = data
		status = resp.StatusCode
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, 0, err
	}
	return body, status, nil
}
