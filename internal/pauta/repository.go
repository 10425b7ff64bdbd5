package pauta

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsula o acesso a pautas, sessões e decisões.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(p *Pauta) error {
	return r.DB.Create(p).Error
}

// FindByID carrega a pauta com os processos em ordem e a sessão.
func (r *Repository) FindByID(id uint) (*Pauta, error) {
	var p Pauta
	err := r.DB.
		Preload("Processos", func(db *gorm.DB) *gorm.DB { return db.Order("ordem ASC") }).
		Preload("Processos.Processo").
		Preload("Sessao").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindByIDForUpdate(id uint) (*Pauta, error) {
	var p Pauta
	if err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindByNumero(numero string) (*Pauta, error) {
	var p Pauta
	if err := r.DB.Where("numero = ?", numero).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(status string) ([]Pauta, error) {
	q := r.DB.Model(&Pauta{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []Pauta
	err := q.Order("data_sessao DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *Repository) UpdateStatus(id uint, status string) error {
	return r.DB.Model(&Pauta{}).Where("id = ?", id).Update("status", status).Error
}

// Itens devolve as inclusões da pauta em ordem.
func (r *Repository) Itens(pautaID uint) ([]ProcessoPauta, error) {
	var list []ProcessoPauta
	err := r.DB.Where("pauta_id = ?", pautaID).Order("ordem ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *Repository) FindItem(pautaID, processoID uint) (*ProcessoPauta, error) {
	var it ProcessoPauta
	err := r.DB.Where("pauta_id = ? AND processo_id = ?", pautaID, processoID).First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// PautaAbertaDoProcesso localiza a pauta não encerrada que contém o processo.
func (r *Repository) PautaAbertaDoProcesso(processoID uint) (*Pauta, error) {
	var p Pauta
	err := r.DB.
		Joins("JOIN processos_pauta pp ON pp.pauta_id = pautas.id").
		Where("pp.processo_id = ? AND pautas.status IN ?", processoID, []string{StatusAberta, StatusEmJulgamento}).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) MaxOrdem(pautaID uint) (int, error) {
	var max int
	err := r.DB.Model(&ProcessoPauta{}).Where("pauta_id = ?", pautaID).Select("COALESCE(MAX(ordem), 0)").Scan(&max).Error
	return max, err
}

func (r *Repository) CreateItem(it *ProcessoPauta) error {
	return r.DB.Omit("Processo").Create(it).Error
}

func (r *Repository) DeleteItem(id uint) error {
	return r.DB.Delete(&ProcessoPauta{}, id).Error
}

func (r *Repository) UpdateOrdem(id uint, ordem int) error {
	return r.DB.Model(&ProcessoPauta{}).Where("id = ?", id).Update("ordem", ordem).Error
}

func (r *Repository) CreateSessao(s *SessaoJulgamento) error {
	return r.DB.Create(s).Error
}

// FindSessao carrega a sessão com as decisões e votos.
func (r *Repository) FindSessao(id uint) (*SessaoJulgamento, error) {
	var s SessaoJulgamento
	if err := r.DB.Preload("Decisoes.Votos").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) FindSessaoForUpdate(id uint) (*SessaoJulgamento, error) {
	var s SessaoJulgamento
	if err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) UpdateSessao(s *SessaoJulgamento) error {
	return r.DB.Omit("Decisoes").Save(s).Error
}

// CreateDecisao grava a decisão e os votos.
func (r *Repository) CreateDecisao(d *Decisao) error {
	return r.DB.Create(d).Error
}

func (r *Repository) DecisaoNaSessao(sessaoID, processoID uint) (*Decisao, error) {
	var d Decisao
	err := r.DB.Where("sessao_id = ? AND processo_id = ?", sessaoID, processoID).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UltimaDecisaoDefinitiva devolve a decisão de mérito mais recente do processo.
func (r *Repository) UltimaDecisaoDefinitiva(processoID uint) (*Decisao, error) {
	var d Decisao
	err := r.DB.
		Where("processo_id = ? AND definitiva = ?", processoID, true).
		Order("data_decisao DESC, id DESC").
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Decisoes lista as decisões do processo, da mais recente à mais antiga.
func (r *Repository) Decisoes(processoID uint) ([]Decisao, error) {
	var list []Decisao
	err := r.DB.Preload("Votos").
		Where("processo_id = ?", processoID).
		Order("data_decisao DESC, id DESC").
		Find(&list).Error
	return list, err
}
