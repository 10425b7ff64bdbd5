package pauta

import (
	"net/http"
	"strconv"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	"github.com/gorilla/mux"
)

type Handler struct {
	Servico *Servico
}

func NewHandler(s *Servico) *Handler {
	return &Handler{Servico: s}
}

func idDaRota(r *http.Request, chave string) (uint, error) {
	id, err := strconv.Atoi(mux.Vars(r)[chave])
	if err != nil || id <= 0 {
		return 0, erros.Invalido("Parâmetro '%s' inválido", chave)
	}
	return uint(id), nil
}

func (h *Handler) repo(r *http.Request) *Repository {
	return NewRepository(h.Servico.DB.WithContext(r.Context()))
}

// POST /api/pautas
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in criarPautaDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "pauta.criar", err)
		return
	}
	data, err := utils.ParseData("dataSessao", in.DataSessao)
	if err != nil {
		utils.EscreverErro(w, r, "pauta.criar", err)
		return
	}
	p, err := h.Servico.CriarPauta(r.Context(), auth.UsuarioDaRequisicao(r), NovaPauta{Numero: in.Numero, DataSessao: data, Descricao: in.Descricao})
	if err != nil {
		utils.EscreverErro(w, r, "pauta.criar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, p)
}

// GET /api/pautas?status=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo(r).List(r.URL.Query().Get("status"))
	if err != nil {
		utils.EscreverErro(w, r, "pauta.listar", erros.InternoErr(err, "erro ao listar pautas"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, list)
}

// GET /api/pautas/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "pauta.buscar", err)
		return
	}
	p, err := h.repo(r).FindByID(id)
	if err != nil {
		utils.EscreverErro(w, r, "pauta.buscar", erros.DeBusca(err, "Pauta"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, p)
}

// POST /api/pautas/{id}/processos
func (h *Handler) IncluirProcesso(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "pauta.incluir", err)
		return
	}
	var in incluirDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "pauta.incluir", err)
		return
	}
	if in.ProcessoID == 0 {
		utils.EscreverErro(w, r, "pauta.incluir", erros.Invalido("O campo 'processoId' é obrigatório").ComCampo("processoId", "obrigatório"))
		return
	}
	item, err := h.Servico.IncluirProcesso(r.Context(), auth.UsuarioDaRequisicao(r), id, Inclusao(in))
	if err != nil {
		utils.EscreverErro(w, r, "pauta.incluir", err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, item)
}

// DELETE /api/pautas/{id}/processos/{processoId}
func (h *Handler) RemoverProcesso(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "pauta.remover", err)
		return
	}
	processoID, err := idDaRota(r, "processoId")
	if err != nil {
		utils.EscreverErro(w, r, "pauta.remover", err)
		return
	}
	if err := h.Servico.RemoverProcesso(r.Context(), auth.UsuarioDaRequisicao(r), id, processoID); err != nil {
		utils.EscreverErro(w, r, "pauta.remover", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/pautas/{id}/ordem
func (h *Handler) Reordenar(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "pauta.reordenar", err)
		return
	}
	var in reordenarDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "pauta.reordenar", err)
		return
	}
	if err := h.Servico.Reordenar(r.Context(), auth.UsuarioDaRequisicao(r), id, in.ProcessoIDs); err != nil {
		utils.EscreverErro(w, r, "pauta.reordenar", err)
		return
	}
	p, err := h.repo(r).FindByID(id)
	if err != nil {
		utils.EscreverErro(w, r, "pauta.reordenar", erros.DeBusca(err, "Pauta"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, p)
}

// POST /api/pautas/{id}/sessao
func (h *Handler) AbrirSessao(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "sessao.abrir", err)
		return
	}
	var in abrirSessaoDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "sessao.abrir", err)
		return
	}
	s, err := h.Servico.AbrirSessao(r.Context(), auth.UsuarioDaRequisicao(r), id, NovaSessao(in))
	if err != nil {
		utils.EscreverErro(w, r, "sessao.abrir", err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, s)
}

// GET /api/sessoes/{id}
func (h *Handler) BuscarSessao(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "sessao.buscar", err)
		return
	}
	s, err := h.repo(r).FindSessao(id)
	if err != nil {
		utils.EscreverErro(w, r, "sessao.buscar", erros.DeBusca(err, "Sessão de julgamento"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, s)
}

// POST /api/sessoes/{id}/decisoes
func (h *Handler) RegistrarDecisao(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "decisao.registrar", err)
		return
	}
	var in decisaoDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "decisao.registrar", err)
		return
	}
	nova := NovaDecisao{ProcessoID: in.ProcessoID, Tipo: in.Tipo, Fundamentacao: in.Fundamentacao}
	for _, v := range in.Votos {
		nova.Votos = append(nova.Votos, NovoVoto(v))
	}
	d, err := h.Servico.RegistrarDecisao(r.Context(), auth.UsuarioDaRequisicao(r), id, nova)
	if err != nil {
		utils.EscreverErro(w, r, "decisao.registrar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, d)
}

// PATCH /api/sessoes/{id}/encerrar
func (h *Handler) EncerrarSessao(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "sessao.encerrar", err)
		return
	}
	var in encerrarDTO
	if r.ContentLength != 0 {
		if err := utils.DecodificarJSON(r, &in); err != nil {
			utils.EscreverErro(w, r, "sessao.encerrar", err)
			return
		}
	}
	s, err := h.Servico.EncerrarSessao(r.Context(), auth.UsuarioDaRequisicao(r), id, in.Ata)
	if err != nil {
		utils.EscreverErro(w, r, "sessao.encerrar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, s)
}

// GET /api/processos/{id}/decisoes
func (h *Handler) DecisoesDoProcesso(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r, "id")
	if err != nil {
		utils.EscreverErro(w, r, "decisao.listar", err)
		return
	}
	list, err := h.repo(r).Decisoes(id)
	if err != nil {
		utils.EscreverErro(w, r, "decisao.listar", erros.InternoErr(err, "erro ao listar decisões"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, list)
}
