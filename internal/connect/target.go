// Package connect turns command-line targets into filesystems.
package connect

import (
	"fmt"
	"strconv"
	"strings"

	"fsdu/internal/config"
)

const (
	SchemeLocal = ""
	SchemeVMap  = "vmap"
)

// Target is a parsed command-line argument: where to look and what to
// match there.
type Target struct {
	Scheme  string
	Server  string
	User    string
	Port    int
	Pattern string
}

// ParseTarget splits arg into a Target. Accepted forms are a plain local
// pattern, sftp://[user@]server[:port]/pattern, the same with ftp:// or
// ftps://, and vmap:///pattern.
//
// The pattern part is taken verbatim, so glob characters such as '?' and
// '#' need no escaping.
func ParseTarget(arg string) (Target, error) {
	scheme, rest, ok := strings.Cut(arg, "://")
	if !ok {
		if arg == "" {
			return Target{}, fmt.Errorf("empty target")
		}
		return Target{Scheme: SchemeLocal, Pattern: arg}, nil
	}

	switch scheme {
	case config.ProtocolSFTP, config.ProtocolFTP, config.ProtocolFTPS, SchemeVMap:
	default:
		return Target{}, fmt.Errorf("target %q: unknown scheme %q", arg, scheme)
	}

	authority, pattern := rest, "/"
	if i := strings.Index(rest, "/"); i >= 0 {
		authority, pattern = rest[:i], rest[i:]
	}

	t := Target{Scheme: scheme, Pattern: pattern}
	if scheme == SchemeVMap {
		if authority != "" {
			return Target{}, fmt.Errorf("target %q: vmap takes no server", arg)
		}
		return t, nil
	}

	if user, host, ok := strings.Cut(authority, "@"); ok {
		t.User = user
		authority = host
	}
	if host, port, ok := strings.Cut(authority, ":"); ok {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return Target{}, fmt.Errorf("target %q: bad port %q", arg, port)
		}
		t.Port = n
		authority = host
	}
	if authority == "" {
		return Target{}, fmt.Errorf("target %q: missing server", arg)
	}
	t.Server = authority
	return t, nil
}

// IsRemote reports whether the target needs a network connection.
func (t Target) IsRemote() bool {
	return t.Scheme != SchemeLocal && t.Scheme != SchemeVMap
}

func (t Target) String() string {
	switch t.Scheme {
	case SchemeLocal:
		return t.Pattern
	case SchemeVMap:
		return SchemeVMap + "://" + t.Pattern
	}

	var b strings.Builder
	b.WriteString(t.Scheme)
	b.WriteString("://")
	if t.User != "" {
		b.WriteString(t.User)
		b.WriteByte('@')
	}
	b.WriteString(t.Server)
	if t.Port != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(t.Port))
	}
	b.WriteString(t.Pattern)
	return b.String()
}
