package authenticator

import "strings"

// ParseScopes splits a comma-separated scope list, dropping blank entries
func ParseScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// MergeScopes returns defaults followed by the extra scopes not already present
func MergeScopes(defaults, extra []string) []string {
	merged := make([]string, 0, len(defaults)+len(extra))
	seen := make(map[string]bool, len(defaults)+len(extra))
	for _, list := range [][]string{defaults, extra} {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			merged = append(merged, s)
		}
	}
	return merged
}
