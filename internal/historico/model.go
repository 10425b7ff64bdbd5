package historico

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tipos de evento do histórico do processo.
const (
	EventoStatus    = "STATUS"
	EventoPauta     = "PAUTA"
	EventoDecisao   = "DECISAO"
	EventoAcordo    = "ACORDO"
	EventoPagamento = "PAGAMENTO"
)

// Ações de auditoria.
const (
	AcaoCriar     = "CREATE"
	AcaoAtualizar = "UPDATE"
	AcaoExcluir   = "DELETE"
)

// ErrSomenteInclusao é devolvido ao tentar alterar ou excluir registros de histórico.
var ErrSomenteInclusao = errors.New("histórico é somente inclusão")

// HistoricoProcesso é a linha do tempo visível do processo.
type HistoricoProcesso struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProcessoID     uint      `gorm:"not null;index" json:"processoId"`
	UsuarioID      string    `gorm:"size:100" json:"usuarioId"`
	Tipo           string    `gorm:"size:30;not null;index" json:"tipo"`
	Titulo         string    `gorm:"size:255;not null" json:"titulo"`
	Descricao      string    `gorm:"type:text" json:"descricao"`
	StatusAnterior string    `gorm:"size:30" json:"statusAnterior,omitempty"`
	StatusNovo     string    `gorm:"size:30" json:"statusNovo,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (HistoricoProcesso) TableName() string { return "historico_processos" }

func (HistoricoProcesso) BeforeUpdate(*gorm.DB) error { return ErrSomenteInclusao }
func (HistoricoProcesso) BeforeDelete(*gorm.DB) error { return ErrSomenteInclusao }

// LogAuditoria registra cada mutação com os estados antes/depois.
type LogAuditoria struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UsuarioID       string         `gorm:"size:100;index" json:"usuarioId"`
	Acao            string         `gorm:"size:20;not null" json:"acao"`
	Entidade        string         `gorm:"size:50;not null;index:idx_auditoria_entidade" json:"entidade"`
	EntidadeID      string         `gorm:"size:50;not null;index:idx_auditoria_entidade" json:"entidadeId"`
	DadosAnteriores datatypes.JSON `json:"dadosAnteriores,omitempty"`
	DadosNovos      datatypes.JSON `json:"dadosNovos,omitempty"`
	IP              string         `gorm:"size:64" json:"ip,omitempty"`
	UserAgent       string         `gorm:"size:255" json:"userAgent,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"createdAt"`
}

func (LogAuditoria) TableName() string { return "logs_auditoria" }

func (LogAuditoria) BeforeUpdate(*gorm.DB) error { return ErrSomenteInclusao }
func (LogAuditoria) BeforeDelete(*gorm.DB) error { return ErrSomenteInclusao }

// Migrate cria as tabelas de histórico e auditoria.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&HistoricoProcesso{}, &LogAuditoria{})
}
