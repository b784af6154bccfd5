package rankings

import "sort"

// sortRanked filters to entries with a rating and sorts them best-first.
// The reverse flag flips the rating comparison (true when higher is better);
// rating ties always break by name ascending.
func sortRanked(entries []Entry, reverse bool) []Entry {
	ranked := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Rating != nil {
			ranked = append(ranked, e)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		ri, rj := *ranked[i].Rating, *ranked[j].Rating
		if ri != rj {
			if reverse {
				return ri > rj
			}
			return ri < rj
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// sortUnranked filters to entries without a rating, sorted by name.
func sortUnranked(entries []Entry) []Entry {
	unranked := make([]Entry, 0)
	for _, e := range entries {
		if e.Rating == nil {
			unranked = append(unranked, e)
		}
	}
	sort.Slice(unranked, func(i, j int) bool { return unranked[i].Name < unranked[j].Name })
	return unranked
}

// movements compares rank positions between the current and previous
// snapshots. Only names present in both sorted orders (after dropping names
// missing from either side) get an indicator, and only when their position
// changed: a better position is up, any other change is down.
func movements(current, previous []Entry, reverse bool) map[string]Movement {
	currentNames := rankedNames(current, reverse)
	previousNames := rankedNames(previous, reverse)

	common := make(map[string]bool, len(currentNames))
	inPrevious := make(map[string]bool, len(previousNames))
	for _, name := range previousNames {
		inPrevious[name] = true
	}
	for _, name := range currentNames {
		if inPrevious[name] {
			common[name] = true
		}
	}

	currentRanks := positions(currentNames, common)
	previousRanks := positions(previousNames, common)

	result := make(map[string]Movement)
	for name := range common {
		switch {
		case currentRanks[name] < previousRanks[name]:
			result[name] = MovementUp
		case currentRanks[name] > previousRanks[name]:
			result[name] = MovementDown
		}
	}
	return result
}

func rankedNames(entries []Entry, reverse bool) []string {
	sorted := sortRanked(entries, reverse)
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.Name
	}
	return names
}

func positions(names []string, common map[string]bool) map[string]int {
	ranks := make(map[string]int, len(common))
	i := 0
	for _, name := range names {
		if common[name] {
			ranks[name] = i
			i++
		}
	}
	return ranks
}

// Rank produces the display order for a single team against its own recent
// history: ranked entries best-first, unranked appended by name, movement
// indicators against the previous snapshot.
func Rank(current, previous []Entry, reverse bool) []Row {
	moved := movements(current, previous, reverse)
	return buildRows(current, moved, nil, reverse)
}

// RankHeadToHead produces a combined display order for two rosters. Movement
// is skipped entirely; it is only meaningful for a single team against its
// own history. Rows from the home roster are marked.
func RankHeadToHead(home, away []Entry, reverse bool) []Row {
	homeNames := make(map[string]bool, len(home))
	for _, e := range home {
		homeNames[e.Name] = true
	}
	combined := append(append([]Entry{}, home...), away...)
	return buildRows(combined, nil, homeNames, reverse)
}

func buildRows(entries []Entry, moved map[string]Movement, homeNames map[string]bool, reverse bool) []Row {
	ordered := append(sortRanked(entries, reverse), sortUnranked(entries)...)
	rows := make([]Row, len(ordered))
	for i, e := range ordered {
		rows[i] = Row{
			Name:     e.Name,
			Rating:   e.Rating,
			Movement: moved[e.Name],
			Home:     homeNames[e.Name],
		}
	}
	return rows
}
