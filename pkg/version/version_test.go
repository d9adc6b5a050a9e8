package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	if Version == "dev" {
		t.Log("Version is 'dev' (development build without ldflags)")
		return
	}
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	require.True(t, semverRegex.MatchString(Version), "Version should follow semver format, got: %s", Version)
}

func TestString_ContainsBuildInfo(t *testing.T) {
	// Given: the version package is imported

	// When: calling String()
	str := String()

	// Then: it names the program, version and toolchain
	assert.Contains(t, str, Version)
	assert.Contains(t, str, "factcheck")
	assert.Contains(t, str, "commit")
	assert.Contains(t, str, runtime.Version())
}

func TestUserAgent_ProgramSlashVersion(t *testing.T) {
	assert.Equal(t, "factcheck/"+Version, UserAgent())
}

func TestGetInfo_MarshalsToJSON(t *testing.T) {
	// Given: build info
	info := GetInfo()

	// When: marshalling it
	data, err := json.Marshal(info)
	require.NoError(t, err)

	// Then: the snake_case keys are present
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Version, decoded["version"])
	assert.Equal(t, runtime.GOOS, decoded["os"])
	assert.Equal(t, runtime.GOARCH, decoded["arch"])
	assert.Contains(t, decoded, "go_version")
}
