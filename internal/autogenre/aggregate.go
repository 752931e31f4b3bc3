package autogenre

// MostCommon returns the most frequent non-empty value. Ties go to the value
// seen first. It returns "" if there is none.
func MostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := ""
	for _, v := range order {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// AlbumResult is the genre aggregated over an album's items.
type AlbumResult struct {
	Genre   string
	Primary string
	Source  Source
}

// AlbumGenre aggregates the stored genres of items. Call it only after all
// item results were written back.
func AlbumGenre(items []Item) AlbumResult {
	genres := make([]string, 0, len(items))
	primaries := make([]string, 0, len(items))
	sources := make([]string, 0, len(items))
	for _, item := range items {
		genres = append(genres, item.Genre)
		primaries = append(primaries, item.GenrePrimary)
		sources = append(sources, string(item.GenreSource))
	}
	return AlbumResult{
		Genre:   MostCommon(genres),
		Primary: MostCommon(primaries),
		Source:  Source(MostCommon(sources)),
	}
}
