package onyx

// ModelStats is the performance of the trades carrying every tag of a model.
type ModelStats struct {
	Tags      []string
	Count     int
	WinRate   Percent
	NetProfit Money
}

// ComputeModelStats evaluates the trades of history carrying all of tags. It
// returns false when no tag is selected.
func ComputeModelStats(history []Trade, tags []string) (ModelStats, bool) {
	if len(tags) == 0 {
		return ModelStats{}, false
	}
	var matched []Trade
	for _, t := range history {
		if t.HasAllTags(tags) {
			matched = append(matched, t)
		}
	}
	return ModelStats{
		Tags:      cloneStrings(tags),
		Count:     len(matched),
		WinRate:   winRate(matched),
		NetProfit: netProfit(matched),
	}, true
}
