// pkg/download/fetch.go

// Package download fetches the server binary from the release channel.
package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/drawthingsai/dts-util/pkg/config"
	"github.com/drawthingsai/dts-util/pkg/dts_err"
	goversion "github.com/hashicorp/go-version"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	releaseAPIURL   = "https://api.github.com/repos/drawthingsai/draw-things-community/releases/latest"
	downloadURLBase = "https://github.com/drawthingsai/draw-things-community/releases/download"

	// FallbackVersion is the last known good release tag, used when the
	// release API is unreachable.
	FallbackVersion = "v1.20250225.0"
)

// Fetcher downloads the server binary into a scratch directory.
type Fetcher struct {
	Client *http.Client

	// APIURL overrides the release lookup endpoint, for tests.
	APIURL string
}

// NewFetcher returns a fetcher with a bounded-timeout HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client: &http.Client{Timeout: 2 * time.Minute},
		APIURL: releaseAPIURL,
	}
}

// LatestReleaseURL resolves the download URL for the newest release,
// falling back to the hardcoded known-good tag when the lookup fails.
func (f *Fetcher) LatestReleaseURL(ctx context.Context) string {
	log := otelzap.Ctx(ctx)
	log.Info("Checking for latest release")

	tag, err := f.latestTag(ctx)
	if err != nil {
		log.Warn("Failed to resolve latest release, using fallback version",
			zap.String("fallback", FallbackVersion),
			zap.Error(err))
		tag = FallbackVersion
	} else {
		log.Info("Found latest release", zap.String("tag", tag))
	}

	return fmt.Sprintf("%s/%s/%s%s", downloadURLBase, tag, config.BinaryName, config.AssetSuffix)
}

func (f *Fetcher) latestTag(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.APIURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release API returned %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", fmt.Errorf("no release found")
	}

	// Tags are v-prefixed semver-ish strings; anything unparseable is
	// treated as a bad API response rather than trusted blindly.
	if _, err := goversion.NewVersion(strings.TrimPrefix(release.TagName, "v")); err != nil {
		return "", fmt.Errorf("unrecognized release tag %q: %w", release.TagName, err)
	}

	return release.TagName, nil
}

// Fetch downloads the binary for the given URL into dir and returns the
// local path. Transport failures surface as download errors.
func (f *Fetcher) Fetch(ctx context.Context, url, dir string) (string, error) {
	log := otelzap.Ctx(ctx)
	log.Info("Downloading server binary", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", dts_err.Wrap(dts_err.KindDownload, err, "invalid download URL")
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", dts_err.Wrap(dts_err.KindDownload, err, "failed to download "+config.BinaryName)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", dts_err.New(dts_err.KindDownload,
			fmt.Sprintf("failed to download %s: %s", config.BinaryName, resp.Status))
	}

	path := filepath.Join(dir, config.BinaryName)
	out, err := os.Create(path)
	if err != nil {
		return "", dts_err.Wrap(dts_err.KindDownload, err, "cannot create download target")
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return "", dts_err.Wrap(dts_err.KindDownload, err, "download interrupted")
	}

	log.Info("Download finished", zap.String("path", path), zap.Int64("bytes", n))
	return path, nil
}
