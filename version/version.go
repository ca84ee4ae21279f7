// Package version provides unified mechanisms for application version tracking, update discovery, and compatibility validation.
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/network"
	"github.com/pitchloop/pitchloop/util"
	"github.com/pitchloop/pitchloop/where"
)

// Repository is the GitHub owner/name releases are published under.
const Repository = "pitchloop/pitchloop"

// ReleasesAPI is queried for the latest release. Tests point it elsewhere.
var ReleasesAPI = "https://api.github.com/repos/" + Repository + "/releases/latest"

var versionCacher = sync.OnceValue(func() *gache.Cache[string] {
	return gache.New[string](&gache.Options{
		Path:       filepath.Join(where.Cache(), "version.json"),
		Lifetime:   time.Hour * 24 * 2,
		FileSystem: &filesystem.GacheFs{},
	})
})

// ReleaseURL links to the release page of version.
func ReleaseURL(version string) string {
	return "https://github.com/" + Repository + "/releases/tag/v" + version
}

// Latest returns the newest released version, without the leading v.
// Results are cached for two days.
func Latest() (string, error) {
	cached, expired, err := versionCacher().Get()
	if err != nil {
		return "", err
	}

	if !expired && cached != "" {
		return cached, nil
	}

	version, err := fetchLatest()
	if err != nil {
		return "", err
	}

	_ = versionCacher().Set(version)
	return version, nil
}

func fetchLatest() (string, error) {
	req, err := http.NewRequest(http.MethodGet, ReleasesAPI, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", network.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", err
	}

	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release check: %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	return strings.TrimPrefix(release.TagName, "v"), nil
}
