package types

import (
	"time"
)

// Roles recognised by the API. Only doctors and nurses may attach clinical
// material to a patient record.
const (
	RolDoctor       = "doctor"
	RolEnfermera    = "enfermera"
	RolAdmin        = "admin"
	RolPaciente     = "paciente"
	RolInvestigador = "investigador"
)

type User struct {
	Rut            string    `gorm:"primaryKey;column:rut" json:"rut"`
	Nombre         string    `gorm:"not null;column:nombre" json:"nombre"`
	Correo         string    `gorm:"uniqueIndex;not null;column:correo" json:"correo"`
	ContrasenaHash string    `gorm:"not null;column:contrasena_hash" json:"-"`
	Rol            string    `gorm:"not null;column:rol" json:"rol"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

func ValidRol(rol string) bool {
	switch rol {
	case RolDoctor, RolEnfermera, RolAdmin, RolPaciente, RolInvestigador:
		return true
	default:
		return false
	}
}
