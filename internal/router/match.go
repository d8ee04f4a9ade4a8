package router

import (
	"net/url"
	"strings"
)

// splitFragment separates a navigation fragment into its path and raw query
// parts. The query never participates in route matching.
func splitFragment(fragment string) (path, rawQuery string) {
	if i := strings.IndexByte(fragment, '?'); i >= 0 {
		return fragment[:i], fragment[i+1:]
	}
	return fragment, ""
}

// normalizePath guarantees a leading slash and strips a trailing one, so
// "/camera" and "camera/" resolve to the same route. The root path stays "/".
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}

// splitPath returns the non-empty segments of a path.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// parseQuery flattens a raw query string into a map, keeping the first value
// per key. Malformed input degrades to an empty map rather than failing the
// navigation.
func parseQuery(raw string) map[string]string {
	query := map[string]string{}
	if raw == "" {
		return query
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return query
	}
	for k, vs := range values {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}
	return query
}

// match compares path segments against the route's pattern segments. A
// ":name" pattern segment captures exactly one literal segment,
// percent-decoded; any literal mismatch or segment-count difference rejects
// the route.
func (rt *route) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(rt.segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, ps := range rt.segments {
		if strings.HasPrefix(ps, ":") {
			value := segments[i]
			if decoded, err := url.PathUnescape(value); err == nil {
				value = decoded
			}
			params[strings.TrimPrefix(ps, ":")] = value
			continue
		}
		if ps != segments[i] {
			return nil, false
		}
	}
	return params, true
}

// resolve finds the first registered route for path: an exact string match
// beats any pattern, then patterns are tried in registration order.
func (r *Router) resolve(path string) (*route, map[string]string, bool) {
	for i := range r.routes {
		if r.routes[i].pattern == path {
			return &r.routes[i], map[string]string{}, true
		}
	}
	segments := splitPath(path)
	for i := range r.routes {
		if params, ok := r.routes[i].match(segments); ok {
			return &r.routes[i], params, true
		}
	}
	return nil, nil, false
}
