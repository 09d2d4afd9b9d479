package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentDefaults(t *testing.T) {
	b := Current()
	assert.Equal(t, "dev", b.Version)
	assert.Equal(t, "unknown", b.Commit)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, b.Platform)
	assert.Equal(t, "dev", Short())
}

func TestCurrentFollowsLinkedValues(t *testing.T) {
	defer func(v, c string) { Version, GitCommit = v, c }(Version, GitCommit)
	Version, GitCommit = "1.4.0", "9f2c1ab"

	b := Current()
	assert.Equal(t, "1.4.0", b.Version)
	assert.Equal(t, "1.4.0", Short())
	assert.Contains(t, b.String(), "wakdex 1.4.0 (9f2c1ab")
}

func TestBuildJSON(t *testing.T) {
	raw, err := json.Marshal(Current())
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, runtime.Version(), got["go_version"])
	assert.ElementsMatch(t, []string{"version", "commit", "built_at", "go_version", "platform"}, keys(got))
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
