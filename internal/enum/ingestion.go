package enum

type MessageOutcome string

const (
	MessageOutcomeSuccess       MessageOutcome = "success"
	MessageOutcomePartial       MessageOutcome = "partial"
	MessageOutcomeNoAttachments MessageOutcome = "no-attachments"
)

func (t MessageOutcome) String() string {
	return string(t)
}

type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	// RunStatusPartial means the run finished but some messages or attachments failed.
	RunStatusPartial  RunStatus = "partial"
	RunStatusFailed   RunStatus = "failed"
	RunStatusTimedOut RunStatus = "timed_out"
)

func (t RunStatus) String() string {
	return string(t)
}

type StorageProvider string

const (
	StorageProviderR2 StorageProvider = "r2"
	StorageProviderS3 StorageProvider = "s3"
)

func (t StorageProvider) String() string {
	return string(t)
}

type DocumentSource string

const (
	DocumentSourceEmail DocumentSource = "email"
)

func (t DocumentSource) String() string {
	return string(t)
}
