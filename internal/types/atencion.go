package types

import (
	"time"
)

// Atencion links a professional to a patient they have treated. The pair is
// unique; repeated uploads by the same professional reuse the existing row.
type Atencion struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PacienteID    uint      `gorm:"not null;uniqueIndex:idx_atencion_par;column:paciente_id" json:"paciente_id"`
	ProfesionalID uint      `gorm:"not null;uniqueIndex:idx_atencion_par;column:profesional_id" json:"profesional_id"`
	FechaAtencion time.Time `gorm:"not null;column:fecha_atencion" json:"fecha_atencion"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (Atencion) TableName() string {
	return "atencion"
}
