package comentario

import "time"

type textoDTO struct {
	Texto string `json:"texto"`
}

type autorDTO struct {
	Tipo string `json:"tipo"` // "usuario" | "sistema"
	ID   string `json:"id,omitempty"`
	Nome string `json:"nome,omitempty"`
}

type comentarioDTO struct {
	ID         uint      `json:"id"`
	ProcessoID uint      `json:"processoId"`
	Texto      string    `json:"texto"`
	Sistema    bool      `json:"sistema"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Autor      autorDTO  `json:"autor"`
}

func toDTO(c Comentario) comentarioDTO {
	out := comentarioDTO{
		ID:         c.ID,
		ProcessoID: c.ProcessoID,
		Texto:      c.Texto,
		Sistema:    c.Sistema,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Autor:      autorDTO{Tipo: "usuario", ID: c.UsuarioID, Nome: c.Autor},
	}
	if c.Sistema {
		out.Autor = autorDTO{Tipo: "sistema"}
	}
	return out
}
