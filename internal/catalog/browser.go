package catalog

// Categories returns the unique category names in first-seen order.
func Categories(songs []Song) []string {
	var out []string
	seen := make(map[string]struct{}, len(songs))
	for _, s := range songs {
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		out = append(out, s.Category)
	}
	return out
}

// InCategory filters songs by exact, case-sensitive category match,
// preserving catalog order. An empty result is a normal "nothing here"
// outcome, not an error.
func InCategory(songs []Song, category string) []Song {
	var out []Song
	for _, s := range songs {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// FindByName returns the first song with the given name in catalog order.
// Duplicate names resolve to the earliest record; later ones are
// unreachable through selection, which matches the callback contract.
func FindByName(songs []Song, name string) (Song, bool) {
	for _, s := range songs {
		if s.Name == name {
			return s, true
		}
	}
	return Song{}, false
}
