package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// version is the module version or "dev" for local builds.
func version(info *debug.BuildInfo) string {
	v := info.Main.Version
	if v == "" || v == "(devel)" {
		return "dev"
	}
	return v
}

// String is the text printed by --version: the version plus the VCS
// revision the binary was built from, when recorded.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	return describe(info)
}

func describe(info *debug.BuildInfo) string {
	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	v := version(info)
	if revision == "" {
		return v
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	var extra []string
	extra = append(extra, "rev "+revision)
	if dirty {
		extra = append(extra, "dirty")
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(extra, ", "))
}
