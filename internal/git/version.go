package git

import gitbackend "github.com/thiagokokada/gitview/internal/git/backend"

// GitVersion probes the git executable on PATH once per process. Handles
// report the version they were opened with through Repository.GitVersion.
func GitVersion() (string, error) {
	return gitbackend.GitVersion()
}

func MinGitVersion() string {
	return gitbackend.MinGitVersion()
}
