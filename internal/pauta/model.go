package pauta

import (
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"gorm.io/gorm"
)

// Status da pauta.
const (
	StatusAberta       = "aberta"
	StatusEmJulgamento = "em_julgamento"
	StatusJulgada      = "julgada"
	StatusCancelada    = "cancelada"
)

// TipoDecisao é o resultado do julgamento de um processo.
type TipoDecisao string

const (
	DecisaoDeferido             TipoDecisao = "DEFERIDO"
	DecisaoParcialmenteDeferido TipoDecisao = "PARCIALMENTE_DEFERIDO"
	DecisaoIndeferido           TipoDecisao = "INDEFERIDO"
	DecisaoPedidoVista          TipoDecisao = "PEDIDO_VISTA"
	DecisaoPedidoDiligencia     TipoDecisao = "PEDIDO_DILIGENCIA"
)

// StatusProcesso devolve o status que a decisão impõe ao processo.
func (t TipoDecisao) StatusProcesso() (processo.Status, bool) {
	switch t {
	case DecisaoDeferido, DecisaoParcialmenteDeferido, DecisaoIndeferido:
		return processo.StatusJulgado, true
	case DecisaoPedidoVista:
		return processo.StatusPedidoVista, true
	case DecisaoPedidoDiligencia:
		return processo.StatusPedidoDiligencia, true
	}
	return "", false
}

// Definitiva indica decisão de mérito.
func (t TipoDecisao) Definitiva() bool {
	s, ok := t.StatusProcesso()
	return ok && s == processo.StatusJulgado
}

// Favoravel indica decisão que permite acordo.
func (t TipoDecisao) Favoravel() bool {
	return t == DecisaoDeferido || t == DecisaoParcialmenteDeferido
}

// Pauta agrupa os processos de uma sessão de julgamento.
type Pauta struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Numero     string            `gorm:"size:50;not null;uniqueIndex" json:"numero"`
	DataSessao time.Time         `gorm:"not null;index" json:"dataSessao"`
	Descricao  string            `gorm:"type:text" json:"descricao"`
	Status     string            `gorm:"size:20;not null;default:'aberta'" json:"status"`
	Processos  []ProcessoPauta   `gorm:"foreignKey:PautaID" json:"processos,omitempty"`
	Sessao     *SessaoJulgamento `gorm:"foreignKey:PautaID" json:"sessao,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func (Pauta) TableName() string { return "pautas" }

// ProcessoPauta é a inclusão de um processo numa pauta.
type ProcessoPauta struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	PautaID    uint              `gorm:"not null;index" json:"pautaId"`
	ProcessoID uint              `gorm:"not null;index" json:"processoId"`
	Processo   processo.Processo `gorm:"foreignKey:ProcessoID" json:"processo"`
	Ordem      int               `gorm:"not null" json:"ordem"`
	RelatorID  string            `gorm:"size:100" json:"relatorId"`
	RevisorID  string            `gorm:"size:100" json:"revisorId"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func (ProcessoPauta) TableName() string { return "processos_pauta" }

// SessaoJulgamento é a sessão aberta sobre uma pauta.
type SessaoJulgamento struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PautaID      uint       `gorm:"not null;uniqueIndex" json:"pautaId"`
	Presidente   string     `gorm:"size:150" json:"presidente"`
	Conselheiros string     `gorm:"type:text" json:"conselheiros"`
	DataInicio   time.Time  `gorm:"not null" json:"dataInicio"`
	DataFim      *time.Time `json:"dataFim"`
	Ata          string     `gorm:"type:text" json:"ata"`
	Decisoes     []Decisao  `gorm:"foreignKey:SessaoID" json:"decisoes,omitempty"`
}

func (SessaoJulgamento) TableName() string { return "sessoes_julgamento" }

func (s *SessaoJulgamento) Aberta() bool { return s.DataFim == nil }

type Decisao struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ProcessoID    uint        `gorm:"not null;index" json:"processoId"`
	SessaoID      uint        `gorm:"not null;index" json:"sessaoId"`
	Tipo          TipoDecisao `gorm:"size:30;not null" json:"tipo"`
	Definitiva    bool        `gorm:"not null" json:"definitiva"`
	Fundamentacao string      `gorm:"type:text" json:"fundamentacao"`
	DataDecisao   time.Time   `gorm:"not null;index" json:"dataDecisao"`
	Votos         []Voto      `gorm:"foreignKey:DecisaoID" json:"votos,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func (Decisao) TableName() string { return "decisoes" }

// Sentidos de voto.
const (
	VotoFavoravel = "favoravel"
	VotoContrario = "contrario"
	VotoAbstencao = "abstencao"
)

type Voto struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	DecisaoID       uint   `gorm:"not null;index" json:"decisaoId"`
	ConselheiroID   string `gorm:"size:100;not null" json:"conselheiroId"`
	ConselheiroNome string `gorm:"size:150" json:"conselheiroNome"`
	Sentido         string `gorm:"size:20;not null" json:"sentido"`
	Fundamentacao   string `gorm:"type:text" json:"fundamentacao"`
}

func (Voto) TableName() string { return "votos" }

// Modelos lista as tabelas do pacote.
func Modelos() []any {
	return []any{&Pauta{}, &ProcessoPauta{}, &SessaoJulgamento{}, &Decisao{}, &Voto{}}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Modelos()...)
}
