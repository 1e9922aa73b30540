package types

import (
	"time"
)

const (
	EvaluadorModelo  = "modelo"
	EvaluadorExperto = "experto"
)

// PWATScore holds one Photographic Wound Assessment Tool evaluation. The
// model only predicts categories 3 through 8; categories 1 and 2 require
// physical inspection and stay nil unless an expert fills them in.
type PWATScore struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Cat1            *int      `gorm:"column:cat1" json:"cat1"`
	Cat2            *int      `gorm:"column:cat2" json:"cat2"`
	Cat3            int       `gorm:"not null;column:cat3" json:"cat3"`
	Cat4            int       `gorm:"not null;column:cat4" json:"cat4"`
	Cat5            int       `gorm:"not null;column:cat5" json:"cat5"`
	Cat6            int       `gorm:"not null;column:cat6" json:"cat6"`
	Cat7            int       `gorm:"not null;column:cat7" json:"cat7"`
	Cat8            int       `gorm:"not null;column:cat8" json:"cat8"`
	Evaluador       string    `gorm:"not null;column:evaluador" json:"evaluador"`
	Observaciones   string    `gorm:"column:observaciones" json:"observaciones"`
	FechaEvaluacion time.Time `gorm:"not null;column:fecha_evaluacion" json:"fecha_evaluacion"`
	ImagenID        uint      `gorm:"not null;index;column:imagen_id" json:"imagen_id"`
	SegmentacionID  uint      `gorm:"not null;index;column:segmentacion_id" json:"segmentacion_id"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (PWATScore) TableName() string {
	return "pwatscore"
}
