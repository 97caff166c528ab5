package enum

type EntityType string

const (
	DOCUMENT       EntityType = "DOCUMENT"
	INGESTION_RUN  EntityType = "INGESTION_RUN"
	MAILBOX_CONFIG EntityType = "MAILBOX_CONFIGURATION"
)

func (entityType EntityType) String() string {
	return string(entityType)
}

func GetEntityType(s string) EntityType {
	return EntityType(s)
}
