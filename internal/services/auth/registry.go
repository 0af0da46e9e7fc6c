package auth

// Helpers over a single user's ordered refresh-token list. The list is read
// and written back as one collection; insertion order is preserved.

func ContainsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

func AppendToken(tokens []string, token string) []string {
	out := make([]string, 0, len(tokens)+1)
	out = append(out, tokens...)
	return append(out, token)
}

// RemoveToken drops the first matching entry only. A token is consumed or
// revoked exactly once; duplicates, if any, stay behind for a later removal.
func RemoveToken(tokens []string, token string) []string {
	out := make([]string, 0, len(tokens))
	removed := false
	for _, t := range tokens {
		if !removed && t == token {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out
}
