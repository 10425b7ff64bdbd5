package processo

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsula o acesso a dados de processos.
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

func (r *Repository) Create(p *Processo) error {
	return r.DB.Omit("Contribuinte").Create(p).Error
}

// FindByID carrega o processo com o contribuinte.
func (r *Repository) FindByID(id uint) (*Processo, error) {
	var p Processo
	if err := r.DB.Preload("Contribuinte").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDForUpdate trava a linha do processo até o fim da transação.
func (r *Repository) FindByIDForUpdate(id uint) (*Processo, error) {
	var p Processo
	if err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindByNumero(numero string) (*Processo, error) {
	var p Processo
	if err := r.DB.Where("numero = ?", numero).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Filtro de listagem; campos vazios são ignorados.
type Filtro struct {
	Status         Status
	Tipo           Tipo
	ContribuinteID uint
}

func (r *Repository) List(f Filtro) ([]Processo, error) {
	q := r.DB.Preload("Contribuinte")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if f.ContribuinteID != 0 {
		q = q.Where("contribuinte_id = ?", f.ContribuinteID)
	}
	var list []Processo
	err := q.Order("data_recepcao DESC, id DESC").Find(&list).Error
	return list, err
}

// UpdateStatus grava somente o status.
func (r *Repository) UpdateStatus(id uint, status Status) error {
	return r.DB.Model(&Processo{}).Where("id = ?", id).Update("status", status).Error
}

func (r *Repository) UpdateValorNegociado(id uint, v decimal.NullDecimal) error {
	return r.DB.Model(&Processo{}).Where("id = ?", id).Update("valor_negociado", v).Error
}

// Update salva todos os campos do processo.
func (r *Repository) Update(p *Processo) error {
	return r.DB.Omit("Contribuinte").Save(p).Error
}

// ContarVinculos soma acordos, inclusões em pauta e decisões do processo.
func (r *Repository) ContarVinculos(id uint) (int64, error) {
	var total int64
	for _, tabela := range []string{"acordos", "processos_pauta", "decisoes"} {
		var n int64
		if !r.DB.Migrator().HasTable(tabela) {
			continue
		}
		if err := r.DB.Table(tabela).Where("processo_id = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// TemAcordoAtivo informa se há acordo "ativo" para o processo.
func (r *Repository) TemAcordoAtivo(id uint) (bool, error) {
	if !r.DB.Migrator().HasTable("acordos") {
		return false, nil
	}
	var n int64
	err := r.DB.Table("acordos").
		Where("processo_id = ? AND status = ?", id, "ativo").
		Count(&n).Error
	return n > 0, err
}

func (r *Repository) Delete(id uint) error {
	res := r.DB.Delete(&Processo{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
