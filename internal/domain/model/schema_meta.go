package model

// SchemaMeta records which table layout the database holds.
type SchemaMeta struct {
	ID      int64 `gorm:"primaryKey"`
	Version int   `gorm:"not null"`
}

func (SchemaMeta) TableName() string { return "schema_meta" }
