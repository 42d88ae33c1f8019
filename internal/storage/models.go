package storage

import "time"

// RunRecord is one persisted indexing run. Every run is an independent snapshot.
type RunRecord struct {
	ID            string // UUID
	RootPath      string // URI prefix of every resource in the run
	SourceURL     string // where the hierarchy document was fetched from
	Format        string // hierarchy format used to decode it
	ResourceCount int
	CreatedAt     time.Time
}

// ResourceRecord is one indexed page of a run.
type ResourceRecord struct {
	RunID       string
	Name        string
	URI         string
	Breadcrumbs string
}
