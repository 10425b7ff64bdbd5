package acordo

import (
	"errors"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatusAcordo string

const (
	AcordoAtivo     StatusAcordo = "ativo"
	AcordoCumprido  StatusAcordo = "cumprido"
	AcordoCancelado StatusAcordo = "cancelado"
	AcordoVencido   StatusAcordo = "vencido"
)

type StatusParcela string

const (
	ParcelaPendente  StatusParcela = "PENDENTE"
	ParcelaPaga      StatusParcela = "PAGO"
	ParcelaAtrasada  StatusParcela = "ATRASADO"
	ParcelaCancelada StatusParcela = "CANCELADO"
)

type FormaPagamento string

const (
	FormaDinheiro      FormaPagamento = "dinheiro"
	FormaPix           FormaPagamento = "pix"
	FormaTransferencia FormaPagamento = "transferencia"
	FormaBoleto        FormaPagamento = "boleto"
	FormaCartao        FormaPagamento = "cartao"
	FormaDacao         FormaPagamento = "dacao"
	FormaCompensacao   FormaPagamento = "compensacao"
)

func (f FormaPagamento) Valida() bool {
	switch f {
	case FormaDinheiro, FormaPix, FormaTransferencia, FormaBoleto, FormaCartao, FormaDacao, FormaCompensacao:
		return true
	}
	return false
}

// Status de um componente de dação em pagamento.
const (
	DetalhePendente   = "PENDENTE"
	DetalheEmExecucao = "EM_EXECUCAO"
	DetalheExecutado  = "EXECUTADO"
	DetalheCancelado  = "CANCELADO"
)

// Situação de uma inscrição em dívida ativa vinculada ao detalhe.
const (
	InscricaoPendente = "pendente"
	InscricaoQuitada  = "quitado"
)

// ErrPagamentoImutavel é devolvido ao tentar alterar ou excluir um pagamento.
var ErrPagamentoImutavel = errors.New("pagamentos de parcela não podem ser alterados")

// Acordo firmado após julgamento favorável.
type Acordo struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	ProcessoID          uint              `gorm:"not null;index" json:"processoId"`
	Processo            processo.Processo `gorm:"foreignKey:ProcessoID" json:"processo,omitempty"`
	ValorFinal          decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"valorFinal"`
	NumeroParcelas      int               `gorm:"not null" json:"numeroParcelas"`
	DataPrimeiraParcela time.Time         `gorm:"not null" json:"dataPrimeiraParcela"`
	Status              StatusAcordo      `gorm:"size:20;not null;default:'ativo';index" json:"status"`
	Observacoes         string            `gorm:"type:text" json:"observacoes"`
	DataCumprimento     *time.Time        `json:"dataCumprimento"`
	DataCancelamento    *time.Time        `json:"dataCancelamento"`
	MotivoCancelamento  string            `gorm:"type:text" json:"motivoCancelamento,omitempty"`
	Parcelas            []Parcela         `gorm:"foreignKey:AcordoID" json:"parcelas,omitempty"`
	Transacao           *AcordoTransacao  `gorm:"foreignKey:AcordoID" json:"transacao,omitempty"`
	Detalhes            []AcordoDetalhe   `gorm:"foreignKey:AcordoID" json:"detalhes,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// AcordoTransacao guarda as custas de acordos de transação excepcional.
type AcordoTransacao struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	AcordoID            uint            `gorm:"not null;uniqueIndex" json:"acordoId"`
	CustasAdvocaticias  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"custasAdvocaticias"`
	CustasDataPagamento *time.Time      `json:"custasDataPagamento"`
	Observacoes         string          `gorm:"type:text" json:"observacoes"`
}

func (AcordoTransacao) TableName() string { return "acordos_transacao" }

// CustasDevidas indica custas positivas ainda não pagas.
func (t *AcordoTransacao) CustasDevidas() bool {
	return t != nil && t.CustasAdvocaticias.IsPositive() && t.CustasDataPagamento == nil
}

// AcordoDetalhe é um componente (bem, crédito) de acordo de dação em pagamento.
type AcordoDetalhe struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AcordoID     uint              `gorm:"not null;index" json:"acordoId"`
	Tipo         string            `gorm:"size:50;not null" json:"tipo"`
	Descricao    string            `gorm:"type:text" json:"descricao"`
	Valor        decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"valor"`
	Status       string            `gorm:"size:20;not null;default:'PENDENTE'" json:"status"`
	DataExecucao *time.Time        `json:"dataExecucao"`
	Observacoes  string            `gorm:"type:text" json:"observacoes"`
	Inscricoes   []AcordoInscricao `gorm:"foreignKey:DetalheID" json:"inscricoes,omitempty"`
}

func (AcordoDetalhe) TableName() string { return "acordos_detalhes" }

type AcordoInscricao struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	DetalheID       uint            `gorm:"not null;index" json:"detalheId"`
	NumeroInscricao string          `gorm:"size:50;not null" json:"numeroInscricao"`
	Valor           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"valor"`
	Situacao        string          `gorm:"size:20;not null;default:'pendente'" json:"situacao"`
}

func (AcordoInscricao) TableName() string { return "acordos_inscricoes" }

type Parcela struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	AcordoID       uint               `gorm:"not null;uniqueIndex:idx_parcela_acordo_numero" json:"acordoId"`
	Numero         int                `gorm:"not null;uniqueIndex:idx_parcela_acordo_numero" json:"numero"`
	Valor          decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"valor"`
	Status         StatusParcela      `gorm:"size:20;not null;default:'PENDENTE';index" json:"status"`
	DataVencimento time.Time          `gorm:"not null;index" json:"dataVencimento"`
	DataPagamento  *time.Time         `json:"dataPagamento"`
	Pagamentos     []PagamentoParcela `gorm:"foreignKey:ParcelaID" json:"pagamentos,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// PagamentoParcela é somente inclusão.
type PagamentoParcela struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ParcelaID         uint            `gorm:"not null;index" json:"parcelaId"`
	ValorPago         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"valorPago"`
	DataPagamento     time.Time       `gorm:"not null" json:"dataPagamento"`
	FormaPagamento    FormaPagamento  `gorm:"size:20;not null" json:"formaPagamento"`
	NumeroComprovante string          `gorm:"size:100" json:"numeroComprovante,omitempty"`
	Observacoes       string          `gorm:"type:text" json:"observacoes,omitempty"`
	UsuarioID         string          `gorm:"size:100" json:"usuarioId"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func (PagamentoParcela) TableName() string { return "pagamentos_parcela" }

func (PagamentoParcela) BeforeUpdate(*gorm.DB) error { return ErrPagamentoImutavel }
func (PagamentoParcela) BeforeDelete(*gorm.DB) error { return ErrPagamentoImutavel }

// TotalPago soma os pagamentos carregados.
func TotalPago(pagamentos []PagamentoParcela) decimal.Decimal {
	total := decimal.Zero
	for _, p := range pagamentos {
		total = total.Add(p.ValorPago)
	}
	return total
}

// Modelos lista as tabelas do pacote.
func Modelos() []any {
	return []any{&Acordo{}, &AcordoTransacao{}, &AcordoDetalhe{}, &AcordoInscricao{}, &Parcela{}, &PagamentoParcela{}}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Modelos()...)
}
