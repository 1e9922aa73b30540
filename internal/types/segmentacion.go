package types

import (
	"time"
)

const (
	MetodoManual     = "manual"
	MetodoAutomatica = "automatica"
)

type Segmentacion struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Metodo        string    `gorm:"not null;column:metodo" json:"metodo"`
	RutaMascara   string    `gorm:"not null;column:ruta_mascara" json:"ruta_mascara"`
	RutaContorno  *string   `gorm:"column:ruta_contorno" json:"ruta_contorno"`
	FechaCreacion time.Time `gorm:"not null;column:fecha_creacion" json:"fecha_creacion"`
	ImagenID      uint      `gorm:"not null;index;column:imagen_id" json:"imagen_id"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (Segmentacion) TableName() string {
	return "segmentacion"
}
