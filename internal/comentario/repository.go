package comentario

import "gorm.io/gorm"

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) WithDB(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(c *Comentario) error {
	return r.DB.Create(c).Error
}

func (r *Repository) ListByProcesso(processoID uint) ([]Comentario, error) {
	var list []Comentario
	err := r.DB.Where("processo_id = ?", processoID).Order("created_at ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *Repository) FindByID(id uint) (*Comentario, error) {
	var c Comentario
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) UpdateTexto(id uint, texto string) error {
	return r.DB.Model(&Comentario{}).Where("id = ?", id).Update("texto", texto).Error
}

func (r *Repository) Delete(id uint) error {
	return r.DB.Delete(&Comentario{}, id).Error
}
