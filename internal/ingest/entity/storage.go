package entity

// StorageAttempt is one write tried while walking the ladder.
type StorageAttempt struct {
	Size    int
	Rows    int
	Bytes   int
	Outcome AttemptOutcome
	Err     string
}

// StorageResult describes where the ladder stopped.
type StorageResult struct {
	Persisted  bool
	StoredRows int
	LadderSize int
	Truncated  bool
	LastResort bool
	Attempts   []StorageAttempt
}

// StoreUsage reports how much of a size-limited store is in use.
type StoreUsage struct {
	UsedBytes  int64
	QuotaBytes int64
}
