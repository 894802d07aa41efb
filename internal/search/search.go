package search

// Result is a single project hit returned to the admin dashboard.
type Result struct {
	ID           string   `json:"id"`
	DraftID      string   `json:"draftId"`
	Title        string   `json:"title"`
	City         string   `json:"city"`
	PropertyType string   `json:"propertyType"`
	Styles       []string `json:"styles"`
	Snippet      string   `json:"snippet,omitempty"`
}

// Query describes a project search request.
type Query struct {
	Text   string
	City   string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// ProjectRecord is the data we index per submitted project.
type ProjectRecord struct {
	ID           string   `json:"id"`
	DraftID      string   `json:"draftId"`
	Title        string   `json:"title"`
	City         string   `json:"city"`
	PropertyType string   `json:"propertyType"`
	Styles       []string `json:"styles"`
	Moods        []string `json:"moods"`
	Palette      string   `json:"palette"`
}
