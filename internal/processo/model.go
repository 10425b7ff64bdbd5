package processo

import (
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/contribuinte"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipo de processo administrativo.
type Tipo string

const (
	TipoCompensacao          Tipo = "COMPENSACAO"
	TipoDacaoPagamento       Tipo = "DACAO_PAGAMENTO"
	TipoTransacaoExcepcional Tipo = "TRANSACAO_EXCEPCIONAL"
)

func (t Tipo) Valido() bool {
	switch t {
	case TipoCompensacao, TipoDacaoPagamento, TipoTransacaoExcepcional:
		return true
	}
	return false
}

// Processo é o caso administrativo acompanhado pela câmara.
type Processo struct {
	ID             uint                      `gorm:"primaryKey" json:"id"`
	Numero         string                    `gorm:"size:50;not null;uniqueIndex" json:"numero"`
	Tipo           Tipo                      `gorm:"size:30;not null;index" json:"tipo"`
	Status         Status                    `gorm:"size:30;not null;default:'RECEPCIONADO';index" json:"status"`
	ValorOriginal  decimal.Decimal           `gorm:"type:decimal(15,2);not null" json:"valorOriginal"`
	ValorNegociado decimal.NullDecimal       `gorm:"type:decimal(15,2)" json:"valorNegociado"`
	Assunto        string                    `gorm:"size:255" json:"assunto"`
	Observacoes    string                    `gorm:"type:text" json:"observacoes"`
	DataRecepcao   time.Time                 `gorm:"not null" json:"dataRecepcao"`
	ContribuinteID uint                      `gorm:"not null;index" json:"contribuinteId"`
	Contribuinte   contribuinte.Contribuinte `gorm:"foreignKey:ContribuinteID" json:"contribuinte"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt            `gorm:"index" json:"-"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Processo{})
}
