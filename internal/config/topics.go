package config

const (
	// TopicIngestDocument is the NSQ topic for document ingestion tasks
	// (extract, chunk, embed, store).
	TopicIngestDocument = "ingest.document"
)
