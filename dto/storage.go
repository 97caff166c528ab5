package dto

type StoredObject struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

type DocumentRegistration struct {
	FolderID        string
	OrganizationID  string
	Name            string
	Description     string
	ContentType     string
	Size            int64
	CreatedBy       string
	SourceReference string
	Object          *StoredObject
}
