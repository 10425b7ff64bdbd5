package acordo

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/metricas"
	"github.com/CamaraFiscal/api-conciliacao/internal/relatorio"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	"github.com/gorilla/mux"
)

type Handler struct {
	Servico *Servico
}

func NewHandler(s *Servico) *Handler {
	return &Handler{Servico: s}
}

func idDaRota(r *http.Request) (uint, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, erros.Invalido("ID inválido")
	}
	return uint(id), nil
}

func dataOuZero(campo string, s *string) (time.Time, error) {
	d, err := utils.ParseDataOpcional(campo, s)
	if err != nil || d == nil {
		return time.Time{}, err
	}
	return *d, nil
}

// POST /api/acordos
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in criarAcordoDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "acordo.criar", err)
		return
	}
	primeira, err := utils.ParseData("dataPrimeiraParcela", in.DataPrimeiraParcela)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.criar", err)
		return
	}
	novo := NovoAcordo{
		ProcessoID:          in.ProcessoID,
		ValorFinal:          in.ValorFinal,
		NumeroParcelas:      in.NumeroParcelas,
		DataPrimeiraParcela: primeira,
		CustasAdvocaticias:  in.CustasAdvocaticias,
		Observacoes:         in.Observacoes,
	}
	for _, d := range in.Detalhes {
		det := NovoDetalhe{Tipo: d.Tipo, Descricao: d.Descricao, Valor: d.Valor}
		for _, i := range d.Inscricoes {
			det.Inscricoes = append(det.Inscricoes, NovaInscricao(i))
		}
		novo.Detalhes = append(novo.Detalhes, det)
	}
	a, err := h.Servico.CriarAcordo(r.Context(), auth.UsuarioDaRequisicao(r), novo)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.criar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, a)
}

// GET /api/acordos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.buscar", err)
		return
	}
	a, err := h.Servico.Buscar(r.Context(), id)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.buscar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, a)
}

// GET /api/processos/{id}/acordos
func (h *Handler) DoProcesso(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.listar", err)
		return
	}
	list, err := h.Servico.DoProcesso(r.Context(), id)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.listar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, list)
}

// POST /api/pagamentos
func (h *Handler) RegistrarPagamento(w http.ResponseWriter, r *http.Request) {
	var in pagamentoDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "pagamento.registrar", err)
		return
	}
	if in.ParcelaID == 0 {
		utils.EscreverErro(w, r, "pagamento.registrar", erros.Invalido("O campo 'parcelaId' é obrigatório").ComCampo("parcelaId", "obrigatório"))
		return
	}
	if in.DataPagamento == nil || strings.TrimSpace(*in.DataPagamento) == "" {
		utils.EscreverErro(w, r, "pagamento.registrar", erros.Invalido("O campo 'dataPagamento' é obrigatório").ComCampo("dataPagamento", "obrigatório"))
		return
	}
	h.pagar(w, r, in, OrigemPagamento)
}

// POST /api/parcelas/{id}/pagamento
func (h *Handler) PagarParcela(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "parcela.pagar", err)
		return
	}
	var in pagamentoDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "parcela.pagar", err)
		return
	}
	in.ParcelaID = id
	h.pagar(w, r, in, OrigemParcela)
}

func (h *Handler) pagar(w http.ResponseWriter, r *http.Request, in pagamentoDTO, o Origem) {
	operacao := "pagamento." + o.String()
	data, err := dataOuZero("dataPagamento", in.DataPagamento)
	if err != nil {
		utils.EscreverErro(w, r, operacao, err)
		return
	}
	res, err := h.Servico.RegistrarPagamento(r.Context(), auth.UsuarioDaRequisicao(r), NovoPagamento{
		ParcelaID:         in.ParcelaID,
		ValorPago:         in.ValorPago,
		FormaPagamento:    in.FormaPagamento,
		DataPagamento:     data,
		NumeroComprovante: in.NumeroComprovante,
		Observacoes:       in.Observacoes,
	}, o)
	if err != nil {
		utils.EscreverErro(w, r, operacao, err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, respostaPagamento{Message: "Pagamento registrado com sucesso", ResultadoPagamento: res})
}

// GET /api/parcelas/{id}
func (h *Handler) BuscarParcela(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "parcela.buscar", err)
		return
	}
	p, err := h.Servico.BuscarParcela(r.Context(), id)
	if err != nil {
		utils.EscreverErro(w, r, "parcela.buscar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, p)
}

// PUT /api/parcelas/{id}
func (h *Handler) AtualizarParcela(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "parcela.atualizar", err)
		return
	}
	var in atualizarParcelaDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "parcela.atualizar", err)
		return
	}
	venc, err := utils.ParseData("dataVencimento", in.DataVencimento)
	if err != nil {
		utils.EscreverErro(w, r, "parcela.atualizar", err)
		return
	}
	pag, err := utils.ParseDataOpcional("dataPagamento", in.DataPagamento)
	if err != nil {
		utils.EscreverErro(w, r, "parcela.atualizar", err)
		return
	}
	res, err := h.Servico.AtualizarParcela(r.Context(), auth.UsuarioDaRequisicao(r), id, AtualizacaoParcela{
		DataVencimento: venc,
		DataPagamento:  pag,
		Status:         in.Status,
	})
	if err != nil {
		utils.EscreverErro(w, r, "parcela.atualizar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, respostaPagamento{Message: "Parcela atualizada com sucesso", ResultadoPagamento: res})
}

// PATCH /api/acordos/{id}/concluir
func (h *Handler) Concluir(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.concluir", err)
		return
	}
	var in concluirDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "acordo.concluir", err)
		return
	}
	a, err := h.Servico.ConcluirAcordo(r.Context(), auth.UsuarioDaRequisicao(r), id, in.AtualizarProcesso)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.concluir", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, a)
}

// PATCH /api/acordos/{id}/detalhes
func (h *Handler) AtualizarDetalhe(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.detalhe", err)
		return
	}
	var in detalheStatusDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "acordo.detalhe", err)
		return
	}
	if in.DetalheID == 0 {
		utils.EscreverErro(w, r, "acordo.detalhe", erros.Invalido("O campo 'detalheId' é obrigatório").ComCampo("detalheId", "obrigatório"))
		return
	}
	res, err := h.Servico.AtualizarDetalhe(r.Context(), auth.UsuarioDaRequisicao(r), id, in.DetalheID, in.Status, in.Observacoes)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.detalhe", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, res)
}

// PATCH /api/acordos/{id}/custas
func (h *Handler) RegistrarCustas(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.custas", err)
		return
	}
	var in custasDTO
	if r.ContentLength != 0 {
		if err := utils.DecodificarJSON(r, &in); err != nil {
			utils.EscreverErro(w, r, "acordo.custas", err)
			return
		}
	}
	data, err := dataOuZero("dataPagamento", in.DataPagamento)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.custas", err)
		return
	}
	a, err := h.Servico.RegistrarCustas(r.Context(), auth.UsuarioDaRequisicao(r), id, data)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.custas", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, a)
}

// PATCH /api/acordos/{id}/cancelar
func (h *Handler) Cancelar(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.cancelar", err)
		return
	}
	var in cancelarDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "acordo.cancelar", err)
		return
	}
	a, err := h.Servico.CancelarAcordo(r.Context(), auth.UsuarioDaRequisicao(r), id, in.Motivo)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.cancelar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusOK, a)
}

// POST /api/acordos/status
// GET  /api/acordos/status?acao=atualizar|relatorio-vencidas[&formato=json|xlsx|pdf]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	acao := r.URL.Query().Get("acao")
	if r.Method == http.MethodPost && acao == "" {
		acao = "atualizar"
	}
	u := auth.UsuarioDaRequisicao(r)
	switch acao {
	case "atualizar":
		if err := auth.Autorizar(u, auth.SomenteAdmin...); err != nil {
			utils.EscreverErro(w, r, "acordo.vencidas", err)
			return
		}
		res, err := h.Servico.AtualizarVencidas(r.Context(), u)
		if err != nil {
			utils.EscreverErro(w, r, "acordo.vencidas", err)
			return
		}
		utils.EscreverJSON(w, http.StatusOK, res)
	case "relatorio-vencidas":
		if err := auth.Autorizar(u, auth.Leitura...); err != nil {
			utils.EscreverErro(w, r, "acordo.relatorio", err)
			return
		}
		h.relatorio(w, r)
	default:
		utils.EscreverErro(w, r, "acordo.status", erros.Invalido("Ação inválida: use 'atualizar' ou 'relatorio-vencidas'").ComCampo("acao", "inválida"))
	}
}

func (h *Handler) relatorio(w http.ResponseWriter, r *http.Request) {
	rel, err := h.Servico.RelatorioVencidas(r.Context())
	if err != nil {
		utils.EscreverErro(w, r, "acordo.relatorio", err)
		return
	}
	formato := strings.ToLower(r.URL.Query().Get("formato"))
	var (
		corpo []byte
		tipo  string
	)
	switch formato {
	case "", "json":
		utils.EscreverJSON(w, http.StatusOK, rel)
		return
	case "xlsx":
		corpo, err = relatorio.XLSX(rel)
		tipo = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		corpo, err = relatorio.PDF(rel)
		tipo = "application/pdf"
	default:
		utils.EscreverErro(w, r, "acordo.relatorio", erros.Invalido("Formato inválido: %s", formato).ComCampo("formato", "use json, xlsx ou pdf"))
		return
	}
	metricas.Exportacao(formato, err)
	if err != nil {
		utils.EscreverErro(w, r, "acordo.relatorio", erros.InternoErr(err, "erro ao exportar relatório"))
		return
	}
	nome := fmt.Sprintf("parcelas-vencidas-%s.%s", rel.GeradoEm.Format("20060102"), formato)
	w.Header().Set("Content-Type", tipo)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(corpo)
}
