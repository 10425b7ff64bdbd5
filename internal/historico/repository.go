package historico

import (
	"encoding/json"
	"fmt"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Repository grava e consulta histórico e auditoria.
// Todas as escritas recebem o *gorm.DB da transação corrente.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB retorna uma cópia do repo usando um *gorm.DB específico (ex.: tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

// Registrar acrescenta uma entrada ao histórico do processo.
func (r *Repository) Registrar(u *auth.Usuario, h *HistoricoProcesso) error {
	if u != nil && h.UsuarioID == "" {
		h.UsuarioID = u.ID
	}
	return r.DB.Create(h).Error
}

// Auditar grava uma linha de auditoria com snapshots JSON de antes e depois.
func (r *Repository) Auditar(u *auth.Usuario, acao, entidade string, entidadeID uint, antes, depois any) error {
	log := LogAuditoria{
		Acao:       acao,
		Entidade:   entidade,
		EntidadeID: fmt.Sprint(entidadeID),
	}
	if u != nil {
		log.UsuarioID = u.ID
		log.IP = u.IP
		log.UserAgent = u.UserAgent
	}
	var err error
	if log.DadosAnteriores, err = snapshot(antes); err != nil {
		return err
	}
	if log.DadosNovos, err = snapshot(depois); err != nil {
		return err
	}
	return r.DB.Create(&log).Error
}

func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializar snapshot de auditoria: %w", err)
	}
	return datatypes.JSON(b), nil
}

// ListarPorProcesso devolve o histórico do processo, do mais recente ao mais antigo.
func (r *Repository) ListarPorProcesso(processoID uint) ([]HistoricoProcesso, error) {
	var list []HistoricoProcesso
	err := r.DB.
		Where("processo_id = ?", processoID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// ListarAuditoria filtra a auditoria por entidade (e id, se informado).
func (r *Repository) ListarAuditoria(entidade, entidadeID string, limite int) ([]LogAuditoria, error) {
	q := r.DB.Model(&LogAuditoria{})
	if entidade != "" {
		q = q.Where("entidade = ?", entidade)
	}
	if entidadeID != "" {
		q = q.Where("entidade_id = ?", entidadeID)
	}
	if limite <= 0 || limite > 500 {
		limite = 100
	}
	var list []LogAuditoria
	err := q.Order("id DESC").Limit(limite).Find(&list).Error
	return list, err
}
