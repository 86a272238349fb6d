package history

const (
	// KeyEntries is the list of recent dispatch outcomes, newest first
	KeyEntries = "hass_hotkeys:history"
	// KeyCounters is the hash of per-binding success/failure counters
	KeyCounters = "hass_hotkeys:counters"
)

// CounterField returns the counters hash field for a binding and outcome
func CounterField(index int, ok bool) string {
	if ok {
		return itoa(index) + ":ok"
	}
	return itoa(index) + ":failed"
}
