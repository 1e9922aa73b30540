package types

import (
	"time"
)

type Profesional struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre       string    `gorm:"not null;column:nombre" json:"nombre"`
	Especialidad string    `gorm:"column:especialidad" json:"especialidad"`
	Telefono     string    `gorm:"column:telefono" json:"telefono"`
	UserID       string    `gorm:"not null;uniqueIndex;column:user_id" json:"user_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Profesional) TableName() string {
	return "profesional"
}
