package historico

import (
	"net/http"
	"strconv"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	"github.com/gorilla/mux"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// GET /api/processos/{id}/historico
func (h *Handler) ListarPorProcesso(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.EscreverErro(w, r, "historico.listar", erros.Invalido("ID do processo inválido"))
		return
	}
	list, err := h.Repo.WithDB(h.Repo.DB.WithContext(r.Context())).ListarPorProcesso(uint(id))
	if err != nil {
		utils.EscreverErro(w, r, "historico.listar", erros.InternoErr(err, "erro ao listar histórico"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, list)
}

// GET /api/auditoria?entidade=&entidadeId=&limite=
func (h *Handler) ListarAuditoria(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limite, _ := strconv.Atoi(q.Get("limite"))
	list, err := h.Repo.WithDB(h.Repo.DB.WithContext(r.Context())).
		ListarAuditoria(q.Get("entidade"), q.Get("entidadeId"), limite)
	if err != nil {
		utils.EscreverErro(w, r, "auditoria.listar", erros.InternoErr(err, "erro ao listar auditoria"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, list)
}
