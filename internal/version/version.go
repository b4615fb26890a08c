package version

// Version is the application version. Release builds set it via ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/recipebuilder/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version line printed by --version.
func String() string {
	if GitCommit == "unknown" {
		return "recipebuilder " + Version
	}
	return "recipebuilder " + Version + " (" + GitCommit + ", " + BuildTime + ")"
}
