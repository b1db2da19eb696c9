package entity

type UploadStatus string

const (
	UploadStatusQueued     UploadStatus = "QUEUED"
	UploadStatusProcessing UploadStatus = "PROCESSING"
	UploadStatusDone       UploadStatus = "DONE"
	UploadStatusFailed     UploadStatus = "FAILED"
)

// ErrorKind tells which arm of an ingestion failed.
type ErrorKind string

const (
	ErrorKindNone           ErrorKind = ""
	ErrorKindParse          ErrorKind = "PARSE"
	ErrorKindPostProcessing ErrorKind = "POST_PROCESSING"
	ErrorKindCanceled       ErrorKind = "CANCELED"
)

// AttemptOutcome is the result of one write on the storage ladder.
type AttemptOutcome string

const (
	AttemptStored AttemptOutcome = "STORED"
	AttemptQuota  AttemptOutcome = "QUOTA_EXCEEDED"
	AttemptError  AttemptOutcome = "ERROR"
)
