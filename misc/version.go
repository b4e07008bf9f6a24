// Package misc holds build time information.
package misc

// Set by the linker, see Taskfile.yml.
var (
	appName = "bookmerge"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
