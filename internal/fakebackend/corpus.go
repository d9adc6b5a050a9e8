package fakebackend

// demoDoc is one article of the demo corpus, indexed under both modes.
type demoDoc struct {
	title, summary, url, sentiment, date string
}

var demoDocs = []demoDoc{
	{"Global temperatures hit record high", "Climate researchers report the warmest year on record across every continent.", "https://news.example.org/climate/record-high", "negative", "2024-01-12"},
	{"Cities adopt climate adaptation plans", "Coastal cities publish long-term climate adaptation plans focused on flooding.", "https://news.example.org/climate/adaptation", "positive", "2023-11-02"},
	{"Climate summit ends without agreement", "Negotiators leave the climate summit with no binding emissions targets.", "https://news.example.org/climate/summit", "negative", "2023-12-13"},
	{"Farmers report mixed climate effects", "Longer growing seasons offset by drought in a new climate survey of farmers.", "https://news.example.org/climate/farming", "neutral", "2023-08-21"},
	{"Solar capacity doubles as climate policy bites", "Installed solar capacity doubled, which analysts link to climate policy incentives.", "https://news.example.org/climate/solar", "positive", "2024-03-05"},
	{"Climate models refined with ocean data", "New ocean buoy measurements tighten uncertainty in regional climate models.", "https://news.example.org/climate/models", "neutral", "2022-06-30"},
	{"Insurers rethink climate risk", "Home insurers withdraw from regions with rising climate risk.", "https://news.example.org/climate/insurance", "", "2024-02-18"},
	{"Election turnout reaches new high", "Turnout in the regional election was the highest in three decades.", "https://news.example.org/politics/turnout", "positive", "2023-05-07"},
	{"Budget talks stall over health spending", "Lawmakers failed to agree on health spending in the annual budget.", "https://news.example.org/politics/budget", "negative", "2024-04-01"},
	{"Vaccine study published", "A peer-reviewed vaccine study reports results consistent with earlier trials.", "https://news.example.org/health/vaccine", "neutral", "2023-09-14"},
}

var demoExpansions = map[string][]string{
	"climate":       {"climate change", "global warming", "climate policy"},
	"climate chage": {"climate change"},
	"election":      {"election results", "voter turnout"},
	"vacine":        {"vaccine"},
}

// loadDemoCorpus registers demoDocs for all three endpoints.
func loadDemoCorpus(s *Server) {
	var boolean, tfidf, generic []Document
	for _, d := range demoDocs {
		base := Document{Title: d.title, Summary: d.summary, URL: d.url, Sentiment: d.sentiment}

		b := base
		b.Date = d.date
		boolean = append(boolean, b)

		tfidf = append(tfidf, base)

		g := base
		g.Date = d.date
		generic = append(generic, g)
	}

	// Keyed by the empty query so the term index sees the whole corpus but no
	// real query hits it directly. TF-IDF scores come from the index.
	s.corpus["boolean"] = map[string][]Document{"": boolean}
	s.corpus["tfidf"] = map[string][]Document{"": tfidf}
	s.corpus[genericMode] = map[string][]Document{"": generic}
	for q, sugg := range demoExpansions {
		s.expansions[q] = sugg
	}
}
