// Package deeplink turns incoming URIs into invitation codes and delivers
// URIs from the platform transports.
package deeplink

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	groupPath  = regexp.MustCompile(`(?i)/(?:grupo|join)/([A-Za-z0-9]+)`)
	alnum      = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	bareToken  = regexp.MustCompile(`^[A-Za-z0-9]{6,20}$`)
	httpScheme = map[string]bool{"http": true, "https": true}
)

// Rules configures which URIs are eligible.
type Rules struct {
	// Scheme is the application's custom scheme, e.g. "lacos". URIs using it
	// skip the host check.
	Scheme string
	// Hosts are matched exactly or as a parent domain.
	Hosts []string
	// DevPrefixes belong to local development tooling and are always rejected.
	DevPrefixes []string
}

// Resolver extracts invitation codes. It holds no mutable state.
type Resolver struct {
	scheme      string
	hosts       []string
	devPrefixes []string
}

// NewResolver normalizes rules into a resolver.
func NewResolver(rules Rules) *Resolver {
	r := &Resolver{scheme: strings.ToLower(strings.TrimSuffix(strings.TrimSpace(rules.Scheme), "://"))}
	for _, h := range rules.Hosts {
		h = strings.Trim(strings.ToLower(strings.TrimSpace(h)), ".")
		if h != "" {
			r.hosts = append(r.hosts, h)
		}
	}
	for _, p := range rules.DevPrefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			r.devPrefixes = append(r.devPrefixes, p)
		}
	}
	return r
}

// Resolve returns the upper-cased invitation code carried by raw. It never
// panics; anything it cannot use yields ok=false.
func (r *Resolver) Resolve(raw string) (code string, ok bool) {
	defer func() {
		if recover() != nil {
			code, ok = "", false
		}
	}()

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	lower := strings.ToLower(raw)
	for _, p := range r.devPrefixes {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	custom := r.scheme != "" && scheme == r.scheme
	if !custom {
		if !httpScheme[scheme] || !r.hostAllowed(u.Hostname()) {
			return "", false
		}
	}

	if code, ok := fromPathOrQuery(u.EscapedPath(), u.Query()); ok {
		return code, true
	}

	if custom {
		// lacos://grupo/ABC123 parses with "grupo" as the host.
		path := "/" + u.Host + u.EscapedPath()
		if code, ok := fromPathOrQuery(path, u.Query()); ok {
			return code, true
		}
		if u.Opaque != "" {
			if code, ok := fromPathOrQuery("/"+u.Opaque, u.Query()); ok {
				return code, true
			}
		}
	}

	// Any single 6 to 20 character alphanumeric segment is taken as a code,
	// so plain words such as /groups resolve too. Shape alone decides; the
	// backend rejects codes that do not exist.
	bare := strings.Trim(u.EscapedPath(), "/")
	if custom && u.Host != "" {
		bare = strings.Trim(u.Host+"/"+bare, "/")
	}
	if bareToken.MatchString(bare) {
		return strings.ToUpper(bare), true
	}
	return "", false
}

func fromPathOrQuery(path string, query url.Values) (string, bool) {
	if m := groupPath.FindStringSubmatch(path); m != nil {
		return strings.ToUpper(m[1]), true
	}
	if c := strings.TrimSpace(query.Get("code")); c != "" && alnum.MatchString(c) {
		return strings.ToUpper(c), true
	}
	return "", false
}

func (r *Resolver) hostAllowed(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return false
	}
	for _, allowed := range r.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
