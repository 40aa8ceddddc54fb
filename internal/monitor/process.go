package monitor

// DeriveProcess computes the process share of memory from its RSS and the
// system's available memory:
//
//	total   = available - rss
//	free    = total - rss
//	percent = rss / total * 100
//
// When rss is large relative to available these go negative or above 100.
// Such values are clamped (bytes to 0, percent to [0,100]) and the result
// is marked Degenerate.
func DeriveProcess(rss, available uint64) ProcessMetrics {
	pm := ProcessMetrics{RSSBytes: rss}

	total := int64(available) - int64(rss)
	if total <= 0 {
		pm.Degenerate = true
		if rss > 0 {
			pm.Percent = 100
		}
		return pm
	}
	pm.TotalAvailableBytes = uint64(total)

	free := total - int64(rss)
	if free < 0 {
		pm.Degenerate = true
		free = 0
	}
	pm.FreeBytes = uint64(free)

	pm.Percent = float64(rss) / float64(total) * 100
	if pm.Percent > 100 {
		pm.Percent = 100
		pm.Degenerate = true
	}

	return pm
}
