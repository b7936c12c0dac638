package types

// Closes extracts the close prices of a bar series, preserving order.
func Closes(data []OHLCV) []float64 {
	out := make([]float64, len(data))
	for i, bar := range data {
		out[i] = bar.Close
	}
	return out
}

// SeriesOrdered reports whether bar timestamps are strictly increasing.
// Equal timestamps count as a violation: a series must be deduplicated.
func SeriesOrdered(data []OHLCV) bool {
	for i := 1; i < len(data); i++ {
		if !data[i].Timestamp.After(data[i-1].Timestamp) {
			return false
		}
	}
	return true
}

// LastN returns the trailing n bars of a series (the whole series when it is
// shorter than n).
func LastN(data []OHLCV, n int) []OHLCV {
	if n <= 0 {
		return nil
	}
	if len(data) <= n {
		return data
	}
	return data[len(data)-n:]
}
