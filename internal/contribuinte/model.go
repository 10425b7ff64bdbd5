package contribuinte

import (
	"time"

	"gorm.io/gorm"
)

// Contribuinte é o sujeito passivo vinculado aos processos.
type Contribuinte struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"size:255;not null" json:"nome"`
	Documento string    `gorm:"size:20;not null;uniqueIndex" json:"documento"` // CPF ou CNPJ, só dígitos
	Email     string    `gorm:"size:255" json:"email"`
	Telefone  string    `gorm:"size:30" json:"telefone"`
	Endereco  string    `gorm:"size:255" json:"endereco"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Contribuinte{})
}
