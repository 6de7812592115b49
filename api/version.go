package api

import (
	"runtime/debug"

	"github.com/samber/lo"
)

// Version and VersionCommit hold the version information
var (
	Version       = "0.1.0"
	VersionCommit = ""
)

func init() {
	i, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	setting := func(key string) (string, bool) {
		s, ok := lo.Find(i.Settings, func(s debug.BuildSetting) bool {
			return s.Key == key
		})
		return s.Value, ok
	}
	if rev, ok := setting("vcs.revision"); ok {
		VersionCommit = rev
		if modified, _ := setting("vcs.modified"); modified == "true" {
			VersionCommit += "-dirty"
		}
	}
}
