package contribuinte

import (
	"strings"

	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de contribuintes.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(c *Contribuinte) error {
	return r.DB.Create(c).Error
}

func (r *Repository) FindByID(id uint) (*Contribuinte, error) {
	var c Contribuinte
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) FindByDocumento(doc string) (*Contribuinte, error) {
	var c Contribuinte
	if err := r.DB.Where("documento = ?", doc).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List filtra por nome ou documento quando busca não é vazia.
func (r *Repository) List(busca string) ([]Contribuinte, error) {
	q := r.DB.Model(&Contribuinte{})
	if busca = strings.TrimSpace(busca); busca != "" {
		like := "%" + strings.ToLower(busca) + "%"
		q = q.Where("LOWER(nome) LIKE ? OR documento LIKE ?", like, "%"+SomenteDigitos(busca)+"%")
	}
	var list []Contribuinte
	err := q.Order("nome ASC").Find(&list).Error
	return list, err
}

// SomenteDigitos remove pontuação de CPF/CNPJ.
func SomenteDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
