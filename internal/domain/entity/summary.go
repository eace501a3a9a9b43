package entity

// SummaryEntry is one lightweight reference from the collection listing.
type SummaryEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Summary is the collection listing fetched before any detail requests.
type Summary struct {
	Count   int            `json:"count"`
	Results []SummaryEntry `json:"results"`
}
