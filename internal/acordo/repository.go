package acordo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsula o acesso a acordos, parcelas e pagamentos.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func paraAtualizar(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Create grava o acordo com parcelas, transação e detalhes.
func (r *Repository) Create(a *Acordo) error {
	return r.DB.Omit("Processo").Create(a).Error
}

// FindByID carrega o acordo completo.
func (r *Repository) FindByID(id uint) (*Acordo, error) {
	var a Acordo
	err := r.DB.
		Preload("Processo.Contribuinte").
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		Preload("Parcelas.Pagamentos", func(db *gorm.DB) *gorm.DB { return db.Order("data_pagamento ASC, id ASC") }).
		Preload("Transacao").
		Preload("Detalhes.Inscricoes").
		First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByIDForUpdate trava o acordo e carrega a transação.
func (r *Repository) FindByIDForUpdate(id uint) (*Acordo, error) {
	var a Acordo
	if err := paraAtualizar(r.DB).Preload("Transacao").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ListByProcesso(processoID uint) ([]Acordo, error) {
	var list []Acordo
	err := r.DB.
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB { return db.Order("numero ASC") }).
		Preload("Transacao").
		Preload("Detalhes").
		Where("processo_id = ?", processoID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// ExisteAtivo informa se o processo já tem acordo ativo.
func (r *Repository) ExisteAtivo(processoID uint) (bool, error) {
	var n int64
	err := r.DB.Model(&Acordo{}).
		Where("processo_id = ? AND status = ?", processoID, AcordoAtivo).
		Count(&n).Error
	return n > 0, err
}

func (r *Repository) UpdateAcordo(a *Acordo) error {
	return r.DB.Model(&Acordo{}).Where("id = ?", a.ID).Updates(map[string]any{
		"status":              a.Status,
		"data_cumprimento":    a.DataCumprimento,
		"data_cancelamento":   a.DataCancelamento,
		"motivo_cancelamento": a.MotivoCancelamento,
	}).Error
}

func (r *Repository) FindParcela(id uint) (*Parcela, error) {
	var p Parcela
	err := r.DB.
		Preload("Pagamentos", func(db *gorm.DB) *gorm.DB { return db.Order("data_pagamento ASC, id ASC") }).
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AcordoDaParcela lê o acordo_id da parcela sem travar a linha.
func (r *Repository) AcordoDaParcela(id uint) (uint, error) {
	var p Parcela
	if err := r.DB.Select("id", "acordo_id").First(&p, id).Error; err != nil {
		return 0, err
	}
	return p.AcordoID, nil
}

// FindParcelaForUpdate trava a parcela e carrega os pagamentos.
func (r *Repository) FindParcelaForUpdate(id uint) (*Parcela, error) {
	var p Parcela
	if err := paraAtualizar(r.DB).First(&p, id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Where("parcela_id = ?", p.ID).Order("id ASC").Find(&p.Pagamentos).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Parcelas devolve as parcelas do acordo em ordem.
func (r *Repository) Parcelas(acordoID uint) ([]Parcela, error) {
	var list []Parcela
	err := r.DB.Where("acordo_id = ?", acordoID).Order("numero ASC").Find(&list).Error
	return list, err
}

func (r *Repository) UpdateParcela(p *Parcela) error {
	return r.DB.Model(&Parcela{}).Where("id = ?", p.ID).Updates(map[string]any{
		"status":          p.Status,
		"data_vencimento": p.DataVencimento,
		"data_pagamento":  p.DataPagamento,
	}).Error
}

// UpdateStatusParcelas altera o status das parcelas indicadas.
func (r *Repository) UpdateStatusParcelas(ids []uint, status StatusParcela) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.Model(&Parcela{}).Where("id IN ?", ids).Update("status", status).Error
}

func (r *Repository) CreatePagamento(p *PagamentoParcela) error {
	return r.DB.Create(p).Error
}

func (r *Repository) UpdateTransacao(t *AcordoTransacao) error {
	return r.DB.Model(&AcordoTransacao{}).Where("id = ?", t.ID).
		Update("custas_data_pagamento", t.CustasDataPagamento).Error
}

// Detalhes devolve os componentes do acordo com as inscrições.
func (r *Repository) Detalhes(acordoID uint) ([]AcordoDetalhe, error) {
	var list []AcordoDetalhe
	err := r.DB.Preload("Inscricoes").Where("acordo_id = ?", acordoID).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *Repository) UpdateDetalhe(d *AcordoDetalhe) error {
	return r.DB.Model(&AcordoDetalhe{}).Where("id = ?", d.ID).Updates(map[string]any{
		"status":        d.Status,
		"data_execucao": d.DataExecucao,
		"observacoes":   d.Observacoes,
	}).Error
}

func (r *Repository) QuitarInscricoes(detalheID uint) error {
	return r.DB.Model(&AcordoInscricao{}).Where("detalhe_id = ?", detalheID).
		Update("situacao", InscricaoQuitada).Error
}

// AtivosComParcelasAbertas carrega acordos ativos com parcelas PENDENTE/ATRASADO,
// os pagamentos dessas parcelas e o processo com contribuinte.
func (r *Repository) AtivosComParcelasAbertas() ([]Acordo, error) {
	abertas := []StatusParcela{ParcelaPendente, ParcelaAtrasada}
	var list []Acordo
	err := r.DB.
		Preload("Processo.Contribuinte").
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB {
			return db.Where("status IN ?", abertas).Order("numero ASC")
		}).
		Preload("Parcelas.Pagamentos").
		Where("status = ?", AcordoAtivo).
		Where("EXISTS (SELECT 1 FROM parcelas p WHERE p.acordo_id = acordos.id AND p.status IN ?)", abertas).
		Order("id ASC").
		Find(&list).Error
	return list, err
}
