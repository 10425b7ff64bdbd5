package comentario

import (
	"time"

	"gorm.io/gorm"
)

// Comentario é uma anotação livre sobre o processo. Comentários de sistema
// não têm autor e não podem ser editados.
type Comentario struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProcessoID uint           `gorm:"not null;index" json:"processoId"`
	UsuarioID  string         `gorm:"size:100" json:"usuarioId"`
	Autor      string         `gorm:"size:150" json:"autor"`
	Texto      string         `gorm:"type:text;not null" json:"texto"`
	Sistema    bool           `gorm:"not null;default:false" json:"sistema"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Comentario{})
}
