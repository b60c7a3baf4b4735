package news

// Article is the persisted unit of the pipeline: one enriched news item.
// JSON tags define the corpus file contract.
type Article struct {
	CanonicalURL string   `json:"url"`
	Title        string   `json:"title_en"`
	TitleFa      string   `json:"title_fa"`
	Summary      []string `json:"summary"`
	Impact       string   `json:"impact,omitempty"`
	Tag          string   `json:"tag"`
	Urgency      int      `json:"urgency"`
	Sentiment    float64  `json:"sentiment,omitempty"`
	Source       string   `json:"source"`
	PublishedAt  int64    `json:"published_at"`
	Image        string   `json:"image,omitempty"`
}
