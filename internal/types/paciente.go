package types

import (
	"time"
)

// Estado values for the treatment lifecycle of a patient.
const (
	EstadoAlta          = "alta"
	EstadoEnTratamiento = "en_tratamiento"
	EstadoInterrumpido  = "interrumpido"
	EstadoInactivo      = "inactivo"
)

type Paciente struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre          string     `gorm:"not null;column:nombre" json:"nombre"`
	FechaNacimiento *time.Time `gorm:"column:fecha_nacimiento" json:"fecha_nacimiento"`
	Sexo            string     `gorm:"column:sexo" json:"sexo"`
	Telefono        string     `gorm:"column:telefono" json:"telefono"`
	Direccion       string     `gorm:"column:direccion" json:"direccion"`
	Estado          string     `gorm:"not null;default:en_tratamiento;column:estado" json:"estado"`
	UserID          string     `gorm:"not null;uniqueIndex;column:user_id" json:"user_id"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (Paciente) TableName() string {
	return "paciente"
}

func ValidEstado(estado string) bool {
	switch estado {
	case EstadoAlta, EstadoEnTratamiento, EstadoInterrumpido, EstadoInactivo:
		return true
	default:
		return false
	}
}
