package metadata

// types.go defines the metadata client's candidate shape (§3
// MediaIdentification, §4.C), independent of the wire format of any one
// provider so pkg/identifier never imports a provider-specific type.

// Candidate is one search result, normalized across movie and tv queries.
type Candidate struct {
	ID         int
	Title      string
	Year       string
	Popularity float64
	MediaType  string // "movie" or "tv"
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	Popularity    float64 `json:"popularity"`
}

func (r searchResult) movieCandidate() Candidate {
	return Candidate{ID: r.ID, Title: r.Title, Year: yearFromDate(r.ReleaseDate), Popularity: r.Popularity, MediaType: "movie"}
}

func (r searchResult) showCandidate() Candidate {
	return Candidate{ID: r.ID, Title: r.Name, Year: yearFromDate(r.FirstAirDate), Popularity: r.Popularity, MediaType: "tv"}
}

func yearFromDate(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
