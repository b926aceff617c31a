package sim

// UnrealizedPL is the open profit of a trade marked at the given price,
// in account currency. The account currency is assumed to be the quote
// currency of the instrument; this is a single-symbol engine.
func UnrealizedPL(t Trade, mark float64) float64 {
	return t.Units * (mark - t.EntryPrice)
}
