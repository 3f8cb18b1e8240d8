package model

import "strings"

func foldTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// DedupTags removes duplicate tags case-insensitively, keeping the first
// occurrence and its original casing. Insertion order is preserved for
// display; filtering treats tags as an unordered set.
func DedupTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		key := foldTag(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// TagSet builds the folded lookup set used for OR-matching in the resolver.
func TagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if folded := foldTag(t); folded != "" {
			set[folded] = struct{}{}
		}
	}
	return set
}
