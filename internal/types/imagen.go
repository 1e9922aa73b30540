package types

import (
	"time"
)

// Imagen is a wound photograph attached to a patient record. RutaArchivo is
// the on-disk filename inside the image store, never an absolute path.
type Imagen struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	NombreArchivo string    `gorm:"not null;column:nombre_archivo" json:"nombre_archivo"`
	RutaArchivo   string    `gorm:"not null;column:ruta_archivo" json:"ruta_archivo"`
	FechaCaptura  time.Time `gorm:"not null;column:fecha_captura" json:"fecha_captura"`
	Lado          *string   `gorm:"column:lado" json:"lado"`
	PacienteID    uint      `gorm:"not null;index;column:paciente_id" json:"paciente_id"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (Imagen) TableName() string {
	return "imagen"
}
