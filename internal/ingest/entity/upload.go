package entity

type Upload struct {
	ID        string
	FileName  string
	SizeBytes int64
	Status    UploadStatus
	Err       string
	ErrKind   ErrorKind
	StartedAt int64
	EndedAt   int64

	Rows    int
	Storage StorageResult
	Summary Summary
}

// IngestedEvent is published once per ingestion that reached a terminal state.
type IngestedEvent struct {
	EventID    string
	UploadID   string
	Status     UploadStatus
	ErrKind    ErrorKind
	Rows       int
	StoredRows int
	Truncated  bool
	Persisted  bool
	FraudCount int
}
