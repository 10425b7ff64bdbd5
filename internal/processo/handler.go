package processo

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/contribuinte"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	dbutil "github.com/CamaraFiscal/api-conciliacao/internal/utils/db"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo      *Repository
	Historico *historico.Repository
}

func NewHandler(repo *Repository, hist *historico.Repository) *Handler {
	return &Handler{Repo: repo, Historico: hist}
}

func idDaRota(r *http.Request) (uint, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, erros.Invalido("ID do processo inválido")
	}
	return uint(id), nil
}

// POST /api/processos
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in createDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "processo.criar", err)
		return
	}
	in.Numero = strings.TrimSpace(in.Numero)
	switch {
	case in.Numero == "":
		utils.EscreverErro(w, r, "processo.criar", erros.Invalido("O campo 'numero' é obrigatório").ComCampo("numero", "obrigatório"))
		return
	case !in.Tipo.Valido():
		utils.EscreverErro(w, r, "processo.criar", erros.Invalido("Tipo de processo inválido").ComCampo("tipo", "inválido"))
		return
	case !in.ValorOriginal.IsPositive():
		utils.EscreverErro(w, r, "processo.criar", erros.Invalido("O valor original deve ser maior que zero").ComCampo("valorOriginal", "inválido"))
		return
	case in.ContribuinteID == 0:
		utils.EscreverErro(w, r, "processo.criar", erros.Invalido("O campo 'contribuinteId' é obrigatório").ComCampo("contribuinteId", "obrigatório"))
		return
	}
	recepcao := time.Now()
	if d, err := utils.ParseDataOpcional("dataRecepcao", in.DataRecepcao); err != nil {
		utils.EscreverErro(w, r, "processo.criar", err)
		return
	} else if d != nil {
		recepcao = *d
	}

	p := &Processo{
		Numero:         in.Numero,
		Tipo:           in.Tipo,
		Status:         StatusRecepcionado,
		ValorOriginal:  utils.Centavos(in.ValorOriginal),
		Assunto:        in.Assunto,
		Observacoes:    in.Observacoes,
		DataRecepcao:   recepcao,
		ContribuinteID: in.ContribuinteID,
	}
	u := auth.UsuarioDaRequisicao(r)
	err := dbutil.EmTransacao(r.Context(), h.Repo.DB, "erro ao criar processo", func(tx *gorm.DB) error {
		if _, err := contribuinte.NewRepository(tx).FindByID(in.ContribuinteID); err != nil {
			return erros.DeBusca(err, "Contribuinte")
		}
		repo := h.Repo.WithDB(tx)
		if _, err := repo.FindByNumero(p.Numero); err == nil {
			return erros.Invalido("Já existe processo com este número").ComCampo("numero", "duplicado")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := repo.Create(p); err != nil {
			return err
		}
		hist := h.Historico.WithDB(tx)
		if err := hist.Registrar(u, &historico.HistoricoProcesso{
			ProcessoID: p.ID,
			Tipo:       historico.EventoStatus,
			Titulo:     "Processo recepcionado",
			StatusNovo: string(StatusRecepcionado),
		}); err != nil {
			return err
		}
		return hist.Auditar(u, historico.AcaoCriar, "Processo", p.ID, nil, p)
	})
	if err != nil {
		utils.EscreverErro(w, r, "processo.criar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, p)
}

// GET /api/processos?status=&tipo=&contribuinteId=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filtro{Status: Status(strings.ToUpper(q.Get("status"))), Tipo: Tipo(strings.ToUpper(q.Get("tipo")))}
	if f.Status != "" && !f.Status.Valido() {
		utils.EscreverErro(w, r, "processo.listar", erros.Invalido("Status inválido").ComCampo("status", "inválido"))
		return
	}
	if f.Tipo != "" && !f.Tipo.Valido() {
		utils.EscreverErro(w, r, "processo.listar", erros.Invalido("Tipo inválido").ComCampo("tipo", "inválido"))
		return
	}
	if s := q.Get("contribuinteId"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			utils.EscreverErro(w, r, "processo.listar", erros.Invalido("contribuinteId inválido").ComCampo("contribuinteId", "inválido"))
			return
		}
		f.ContribuinteID = uint(id)
	}
	list, err := h.Repo.WithDB(h.Repo.DB.WithContext(r.Context())).List(f)
	if err != nil {
		utils.EscreverErro(w, r, "processo.listar", erros.InternoErr(err, "erro ao listar processos"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, list)
}

// GET /api/processos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "processo.buscar", err)
		return
	}
	p, err := h.Repo.WithDB(h.Repo.DB.WithContext(r.Context())).FindByID(id)
	if err != nil {
		utils.EscreverErro(w, r, "processo.buscar", erros.DeBusca(err, "Processo"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, Detalhe{Processo: *p, ProximosStatus: Proximos(p.Status)})
}

// PUT /api/processos/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "processo.atualizar", err)
		return
	}
	var in updateDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "processo.atualizar", err)
		return
	}
	if in.ValorOriginal != nil && !in.ValorOriginal.IsPositive() {
		utils.EscreverErro(w, r, "processo.atualizar", erros.Invalido("O valor original deve ser maior que zero").ComCampo("valorOriginal", "inválido"))
		return
	}

	var p *Processo
	u := auth.UsuarioDaRequisicao(r)
	err = dbutil.EmTransacao(r.Context(), h.Repo.DB, "erro ao atualizar processo", func(tx *gorm.DB) error {
		repo := h.Repo.WithDB(tx)
		atual, err := repo.FindByIDForUpdate(id)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		antes := *atual
		if in.ValorOriginal != nil {
			atual.ValorOriginal = utils.Centavos(*in.ValorOriginal)
		}
		if in.Assunto != nil {
			atual.Assunto = *in.Assunto
		}
		if in.Observacoes != nil {
			atual.Observacoes = *in.Observacoes
		}
		if err := repo.Update(atual); err != nil {
			return err
		}
		p = atual
		return h.Historico.WithDB(tx).Auditar(u, historico.AcaoAtualizar, "Processo", id, antes, atual)
	})
	if err != nil {
		utils.EscreverErro(w, r, "processo.atualizar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, p)
}

// PATCH /api/processos/{id}/status
func (h *Handler) AlterarStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "processo.status", err)
		return
	}
	var in statusDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "processo.status", err)
		return
	}
	in.Status = Status(strings.ToUpper(strings.TrimSpace(string(in.Status))))

	var p *Processo
	u := auth.UsuarioDaRequisicao(r)
	err = dbutil.EmTransacao(r.Context(), h.Repo.DB, "erro ao alterar status", func(tx *gorm.DB) error {
		repo := h.Repo.WithDB(tx)
		atual, err := repo.FindByIDForUpdate(id)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		if atual.Status != in.Status && (DoAcordo(atual.Status) || DoAcordo(in.Status)) {
			ativo, err := repo.TemAcordoAtivo(id)
			if err != nil {
				return erros.InternoErr(err, "erro ao verificar acordos do processo")
			}
			if ativo {
				return erros.EstadoInvalidoErr("Processo com acordo ativo: o status %s é controlado pelo acordo", atual.Status)
			}
		}
		if _, err := AplicarStatus(tx, u, atual, Mudanca{Para: in.Status, Descricao: in.Observacao}); err != nil {
			return err
		}
		p = atual
		return nil
	})
	if err != nil {
		utils.EscreverErro(w, r, "processo.status", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, p)
}

// DELETE /api/processos/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "processo.deletar", err)
		return
	}
	u := auth.UsuarioDaRequisicao(r)
	err = dbutil.EmTransacao(r.Context(), h.Repo.DB, "erro ao excluir processo", func(tx *gorm.DB) error {
		repo := h.Repo.WithDB(tx)
		atual, err := repo.FindByIDForUpdate(id)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		n, err := repo.ContarVinculos(id)
		if err != nil {
			return err
		}
		if n > 0 {
			return erros.EstadoInvalidoErr("Processo possui acordos, pautas ou decisões e não pode ser excluído")
		}
		if err := repo.Delete(id); err != nil {
			return err
		}
		return h.Historico.WithDB(tx).Auditar(u, historico.AcaoExcluir, "Processo", id, atual, nil)
	})
	if err != nil {
		utils.EscreverErro(w, r, "processo.deletar", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
