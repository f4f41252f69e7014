package indicbot

// Match is one ranked search hit. Metadata always carries "title" and "snippet".
type Match struct {
	ID       string
	Score    float64
	Title    string
	Snippet  string
	Metadata map[string]any
}

// TopResult is the best match in English and the requested language.
type TopResult struct {
	Language       string
	TitleEnglish   string
	TitleNative    string
	SnippetEnglish string
	SnippetNative  string
}

// QueryResult is the outcome of Query.
type QueryResult struct {
	TranslatedQuery string
	Matches         []Match
	EnglishSummary  string
	NativeSummary   string
	SourceLanguage  string
	// TopResult is nil when nothing matched.
	TopResult *TopResult
}

// Row is a document to ingest. Only Query is required.
type Row struct {
	ID            string
	Query         string
	Language      string
	Title         string
	RelevantCases []string
}

// IngestResult counts stored and skipped rows.
type IngestResult struct {
	Ingested int
	Skipped  int
}

// HealthStatus reports component health.
type HealthStatus struct {
	Status   string
	Pinecone bool
	Index    string
	Checks   map[string]string // component → "ok"/"error"/"not_configured"
}
