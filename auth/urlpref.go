package auth

import (
	"strings"

	"github.com/rootCircle/bgit/config"
)

// knownHosts is the fixed allow-list of code-hosting domains eligible for
// automatic URL scheme rewriting. Unknown hosts are never rewritten, so a
// private or self-hosted remote can't be corrupted by a preference.
var knownHosts = map[string]bool{
	"github.com":    true,
	"gitlab.com":    true,
	"bitbucket.org": true,
}

// TransformURL rewrites a repository URL to match the user's preferred
// authentication method. Pure function, no I/O. Returns ("", false) when
// no rewrite applies: unknown host, unrecognized shape, preference
// already satisfied, or the repository-URL-based preference which never
// rewrites.
//
// Recognized shapes: scp-like "git@host:path", explicit "ssh://host/path",
// and "http(s)://host/path".
func TransformURL(url string, preferred config.PreferredAuth) (string, bool) {
	switch preferred {
	case config.PreferredAuthHTTPS:
		if strings.HasPrefix(url, "https://") {
			return "", false
		}
		return toHTTPS(url)
	case config.PreferredAuthSSH:
		if isSSHLike(url) {
			return "", false
		}
		return toSSH(url)
	default:
		// RepositoryURLBased (and anything unrecognized) keeps the URL as-is.
		return "", false
	}
}

func isSSHLike(url string) bool {
	return strings.HasPrefix(url, "git@") || strings.HasPrefix(url, "ssh://")
}

// toHTTPS converts ssh-like URLs to https form, and upgrades http to
// https, for known hosts only.
func toHTTPS(url string) (string, bool) {
	if host, path, ok := parseSSHLike(url); ok {
		if !knownHosts[host] {
			return "", false
		}
		return "https://" + host + "/" + strings.TrimPrefix(path, "/"), true
	}
	if strings.HasPrefix(url, "http://") {
		host, _, ok := parseHTTP(url)
		if !ok || !knownHosts[host] {
			return "", false
		}
		return "https://" + strings.TrimPrefix(url, "http://"), true
	}
	return "", false
}

// toSSH converts http(s) URLs to the scp-like form for known hosts.
func toSSH(url string) (string, bool) {
	host, path, ok := parseHTTP(url)
	if !ok || !knownHosts[host] {
		return "", false
	}
	return "git@" + host + ":" + strings.TrimPrefix(path, "/"), true
}

// parseHTTP splits "scheme://host/path" into host and path.
func parseHTTP(url string) (host, path string, ok bool) {
	_, rest, found := strings.Cut(url, "://")
	if !found {
		return "", "", false
	}
	host, path, found = strings.Cut(rest, "/")
	if !found {
		return host, "", host != ""
	}
	return host, path, host != ""
}

// parseSSHLike splits "git@host:path" or "ssh://user@host/path" into host
// and path.
func parseSSHLike(url string) (host, path string, ok bool) {
	if strings.HasPrefix(url, "git@") {
		after := strings.TrimPrefix(url, "git@")
		host, path, found := strings.Cut(after, ":")
		if !found || host == "" {
			return "", "", false
		}
		return host, path, true
	}
	if rest, found := strings.CutPrefix(url, "ssh://"); found {
		// Strip an optional user@ prefix.
		if _, after, hasAt := strings.Cut(rest, "@"); hasAt {
			rest = after
		}
		host, path, _ := strings.Cut(rest, "/")
		if host == "" {
			return "", "", false
		}
		return host, path, true
	}
	return "", "", false
}
