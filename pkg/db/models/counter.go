package models

// Counter backs the invoice sequence issuer. Seq only moves through the
// atomic increment-and-fetch upsert; values are never reused.
type Counter struct {
	Name string `gorm:"column:name;primaryKey"`
	Seq  int64  `gorm:"column:seq;not null;default:0"`
}
