// Copyright (c) OpenMMLab. All rights reserved.

package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Variables injected at compile time
var (
	Version   = ""        // trainctl version v1.0.0
	Commit    = "unknown" // Git commit hash
	BuildTime = "unset"   // Build time
	BuildTag  = "beta"    // Build tag dev alpha beta rc stable hotfix
)

// Version information
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
	BuildTag  string
}

func GetStructuredVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		BuildTag:  BuildTag,
	}
}

// Get version information from binary
func GetVersionInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return formatFallbackVersion()
	}

	var revision, modified string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}

	commit := Commit
	if commit == "unknown" && revision != "" {
		commit = revision
		if modified == "true" {
			commit += "+localmod"
		}
	}

	var versionStr strings.Builder
	versionStr.WriteString(fmt.Sprintf("  - Version: %s\n", Version))
	versionStr.WriteString(fmt.Sprintf("  - Commit: %s\n", commit))
	versionStr.WriteString(fmt.Sprintf("  - Build Time: %s\n", BuildTime))
	versionStr.WriteString(fmt.Sprintf("  - Build Tag: %s\n", BuildTag))

	return versionStr.String()
}

// Format fallback version information (when buildinfo cannot be read)
func formatFallbackVersion() string {
	var versionStr strings.Builder

	versionStr.WriteString(fmt.Sprintf("Version: %s\n", Version))
	versionStr.WriteString(fmt.Sprintf("Build Tag: %s\n", BuildTag))
	versionStr.WriteString(fmt.Sprintf("Build Time: %s\n", BuildTime))

	if Commit != "" {
		versionStr.WriteString(fmt.Sprintf("Commit: %s\n", Commit))
	}

	return versionStr.String()
}
