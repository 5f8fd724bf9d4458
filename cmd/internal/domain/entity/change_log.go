package entity

type ChangeOperation string

const (
	OperationCreate   ChangeOperation = "CREATE"
	OperationUpdate   ChangeOperation = "UPDATE"
	OperationContacts ChangeOperation = "CONTACTS"
	OperationAccess   ChangeOperation = "RAMAL_ACCESS"
	OperationFavorite ChangeOperation = "RAMAL_FAVORITE"
	OperationImport   ChangeOperation = "IMPORT"
)

// ChangeLog is one append-only row per successful mutation. Payload holds the
// JSON of the request that caused it.
type ChangeLog struct {
	ID        int64           `gorm:"primaryKey"`
	SetorID   int64           `gorm:"not null;index"`
	Slug      string          `gorm:"not null;index"`
	Operation ChangeOperation `gorm:"not null"`
	Payload   string          `gorm:"not null"`
	Source    string          `gorm:"not null;default:''"`
	CreatedAt int64           `gorm:"not null;index;autoCreateTime:false"`
}

func (ChangeLog) TableName() string {
	return "change_log"
}
