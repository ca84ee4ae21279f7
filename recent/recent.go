// Package recent remembers opened videos and suggests them while a path is typed.
package recent

import (
	"path/filepath"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

type record struct {
	Rank int    `json:"rank"`
	Path string `json:"path"`
}

// cacher is resolved on first use so the history path follows the active filesystem backend.
var cacher = sync.OnceValue(func() *gache.Cache[map[string]*record] {
	return gache.New[map[string]*record](
		&gache.Options{
			Path:       where.Recent(),
			FileSystem: &filesystem.GacheFs{},
		},
	)
})

// Remember records an opened path or raises its rank by weight.
func Remember(path string, weight int) error {
	if !viper.GetBool(key.FilesRememberRecent) {
		return nil
	}

	path = filepath.Clean(path)
	cached, expired, err := cacher().Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*record)
	}

	if r, ok := cached[path]; ok {
		r.Rank += weight
	} else {
		cached[path] = &record{Rank: weight, Path: path}
	}

	return cacher().Set(cached)
}

// Suggest returns the best match for a partial path.
func Suggest(partial string) mo.Option[string] {
	suggestions := SuggestMany(partial)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns remembered paths that still exist and fuzzily match partial, most used first.
func SuggestMany(partial string) []string {
	if !viper.GetBool(key.FilesRememberRecent) {
		return []string{}
	}

	cached, expired, err := cacher().Get()
	if err != nil || expired || cached == nil {
		return []string{}
	}

	records := lo.Filter(lo.Values(cached), func(r *record, _ int) bool {
		return fuzzy.MatchFold(partial, r.Path) && filesystem.Exists(r.Path)
	})

	slices.SortFunc(records, func(a, b *record) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		if a.Path < b.Path {
			return -1
		}
		return 1
	})

	return lo.Map(records, func(r *record, _ int) string {
		return r.Path
	})
}

// Forget drops the whole history.
func Forget() error {
	return cacher().Set(make(map[string]*record))
}
