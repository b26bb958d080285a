package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rootCircle/bgit/config"
)

func TestTransformURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		preferred config.PreferredAuth
		want      string
		rewritten bool
	}{
		{
			name:      "ssh to https on github",
			url:       "git@github.com:owner/repo.git",
			preferred: config.PreferredAuthHTTPS,
			want:      "https://github.com/owner/repo.git",
			rewritten: true,
		},
		{
			name:      "https to ssh on github",
			url:       "https://github.com/owner/repo.git",
			preferred: config.PreferredAuthSSH,
			want:      "git@github.com:owner/repo.git",
			rewritten: true,
		},
		{
			name:      "explicit ssh scheme to https",
			url:       "ssh://git@gitlab.com/owner/repo.git",
			preferred: config.PreferredAuthHTTPS,
			want:      "https://gitlab.com/owner/repo.git",
			rewritten: true,
		},
		{
			name:      "http upgraded to https",
			url:       "http://bitbucket.org/owner/repo.git",
			preferred: config.PreferredAuthHTTPS,
			want:      "https://bitbucket.org/owner/repo.git",
			rewritten: true,
		},
		{
			name:      "already https stays put",
			url:       "https://github.com/owner/repo.git",
			preferred: config.PreferredAuthHTTPS,
		},
		{
			name:      "already ssh stays put",
			url:       "git@github.com:owner/repo.git",
			preferred: config.PreferredAuthSSH,
		},
		{
			name:      "unknown host never rewritten to https",
			url:       "git@git.internal.example:owner/repo.git",
			preferred: config.PreferredAuthHTTPS,
		},
		{
			name:      "unknown host never rewritten to ssh",
			url:       "https://git.internal.example/owner/repo.git",
			preferred: config.PreferredAuthSSH,
		},
		{
			name:      "repository url based never rewrites ssh",
			url:       "git@github.com:owner/repo.git",
			preferred: config.PreferredAuthRepositoryURL,
		},
		{
			name:      "repository url based never rewrites https",
			url:       "http://github.com/owner/repo.git",
			preferred: config.PreferredAuthRepositoryURL,
		},
		{
			name:      "garbage url with https preference",
			url:       "not a url",
			preferred: config.PreferredAuthHTTPS,
		},
		{
			name:      "garbage url with ssh preference",
			url:       "not a url",
			preferred: config.PreferredAuthSSH,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TransformURL(tt.url, tt.preferred)
			assert.Equal(t, tt.rewritten, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformURLIsIdempotent(t *testing.T) {
	first, ok := TransformURL("git@github.com:owner/repo.git", config.PreferredAuthHTTPS)
	assert.True(t, ok)

	_, ok = TransformURL(first, config.PreferredAuthHTTPS)
	assert.False(t, ok, "a rewritten URL must not be rewritten again")
}

func TestParseSSHLike(t *testing.T) {
	host, path, ok := parseSSHLike("git@github.com:owner/repo.git")
	assert.True(t, ok)
	assert.Equal(t, "github.com", host)
	assert.Equal(t, "owner/repo.git", path)

	host, path, ok = parseSSHLike("ssh://git@gitlab.com/owner/repo.git")
	assert.True(t, ok)
	assert.Equal(t, "gitlab.com", host)
	assert.Equal(t, "owner/repo.git", path)

	_, _, ok = parseSSHLike("https://github.com/owner/repo.git")
	assert.False(t, ok)
}
