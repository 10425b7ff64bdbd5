package comentario

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	dbutil "github.com/CamaraFiscal/api-conciliacao/internal/utils/db"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

const maxTexto = 5000

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

func idDaRota(r *http.Request) (uint, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, erros.Invalido("ID inválido")
	}
	return uint(id), nil
}

func validarTexto(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", erros.Invalido("O campo 'texto' é obrigatório").ComCampo("texto", "obrigatório")
	}
	if len([]rune(s)) > maxTexto {
		return "", erros.Invalido("Comentário excede %d caracteres", maxTexto).ComCampo("texto", "muito longo")
	}
	return s, nil
}

// podeAlterar exige o autor do comentário; ADMIN também pode excluir.
func podeAlterar(u *auth.Usuario, c *Comentario, exclusao bool) error {
	if c.Sistema {
		return erros.EstadoInvalidoErr("Comentários de sistema não podem ser alterados")
	}
	if c.UsuarioID == u.ID || (exclusao && u.Papel == auth.PapelAdmin) {
		return nil
	}
	return erros.SemPermissao("Somente o autor pode alterar o comentário")
}

// POST /api/processos/{id}/comentarios
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	processoID, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "comentario.criar", err)
		return
	}
	var in textoDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "comentario.criar", err)
		return
	}
	texto, err := validarTexto(in.Texto)
	if err != nil {
		utils.EscreverErro(w, r, "comentario.criar", err)
		return
	}
	u := auth.UsuarioDaRequisicao(r)

	c := &Comentario{ProcessoID: processoID, UsuarioID: u.ID, Autor: u.Nome, Texto: texto}
	err = dbutil.EmTransacao(r.Context(), h.Repo.DB, "erro ao criar comentário", func(tx *gorm.DB) error {
		if _, err := processo.NewRepository(tx).FindByID(processoID); err != nil {
			return erros.DeBusca(err, "Processo")
		}
		if err := h.Repo.WithDB(tx).Create(c); err != nil {
			return err
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoCriar, "Comentario", c.ID, nil, c)
	})
	if err != nil {
		utils.EscreverErro(w, r, "comentario.criar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, toDTO(*c))
}

// GET /api/processos/{id}/comentarios
func (h *Handler) ListarPorProcesso(w http.ResponseWriter, r *http.Request) {
	processoID, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "comentario.listar", err)
		return
	}
	list, err := h.Repo.WithDB(h.Repo.DB.WithContext(r.Context())).ListByProcesso(processoID)
	if err != nil {
		utils.EscreverErro(w, r, "comentario.listar", erros.InternoErr(err, "erro ao listar comentários"))
		return
	}
	out := make([]comentarioDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toDTO(c))
	}
	utils.EscreverJSON(w, http.StatusOK, out)
}

// PUT /api/comentarios/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "comentario.atualizar", err)
		return
	}
	var in textoDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "comentario.atualizar", err)
		return
	}
	texto, err := validarTexto(in.Texto)
	if err != nil {
		utils.EscreverErro(w, r, "comentario.atualizar", err)
		return
	}
	u := auth.UsuarioDaRequisicao(r)

	var c *Comentario
	err = dbutil.EmTransacao(r.Context(), h.Repo.DB, "erro ao atualizar comentário", func(tx *gorm.DB) error {
		repo := h.Repo.WithDB(tx)
		var err error
		if c, err = repo.FindByID(id); err != nil {
			return erros.DeBusca(err, "Comentário")
		}
		if err := podeAlterar(u, c, false); err != nil {
			return err
		}
		antes := c.Texto
		if err := repo.UpdateTexto(id, texto); err != nil {
			return err
		}
		c.Texto = texto
		return historico.NewRepository(tx).Auditar(u, historico.AcaoAtualizar, "Comentario", id,
			map[string]any{"texto": antes}, map[string]any{"texto": texto})
	})
	if err != nil {
		utils.EscreverErro(w, r, "comentario.atualizar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, toDTO(*c))
}

// DELETE /api/comentarios/{id}
func (h *Handler) Remover(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "comentario.remover", err)
		return
	}
	u := auth.UsuarioDaRequisicao(r)
	err = dbutil.EmTransacao(r.Context(), h.Repo.DB, "erro ao remover comentário", func(tx *gorm.DB) error {
		repo := h.Repo.WithDB(tx)
		c, err := repo.FindByID(id)
		if err != nil {
			return erros.DeBusca(err, "Comentário")
		}
		if err := podeAlterar(u, c, true); err != nil {
			return err
		}
		if err := repo.Delete(id); err != nil {
			return err
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoExcluir, "Comentario", id, c, nil)
	})
	if err != nil {
		utils.EscreverErro(w, r, "comentario.remover", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
