package acordo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"github.com/gorilla/mux"
)

func requisicao(u *auth.Usuario, method, path string, body any, vars map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if u != nil {
		req = req.WithContext(auth.ComUsuario(req.Context(), u))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestHandlerCriarAcordo(t *testing.T) {
	s, db, _ := novoServico(t)
	h := NewHandler(s)
	p := processoJulgado(t, db, processo.TipoCompensacao, "001")

	rec := httptest.NewRecorder()
	h.Criar(rec, requisicao(funcionario, http.MethodPost, "/api/acordos", map[string]any{
		"processoId":          p.ID,
		"valorFinal":          "1000.00",
		"numeroParcelas":      4,
		"dataPrimeiraParcela": "2024-07-10",
	}, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var a Acordo
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(a.Parcelas) != 4 {
		t.Fatalf("parcelas = %d", len(a.Parcelas))
	}

	rec = httptest.NewRecorder()
	h.Criar(rec, requisicao(funcionario, http.MethodPost, "/api/acordos", map[string]any{
		"processoId": p.ID, "valorFinal": "10", "numeroParcelas": 1,
	}, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing date: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.DoProcesso(rec, requisicao(leitor, http.MethodGet, "/", nil, map[string]string{"id": fmt.Sprint(p.ID)}))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"numeroParcelas":4`) {
		t.Fatalf("listar: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerPagamento(t *testing.T) {
	s, db, _ := novoServico(t)
	h := NewHandler(s)
	p := processoJulgado(t, db, processo.TipoCompensacao, "001")
	a := firmar(t, s, NovoAcordo{ProcessoID: p.ID, ValorFinal: dec("1000.00"), NumeroParcelas: 2})
	parcela := a.Parcelas[0]

	rec := httptest.NewRecorder()
	h.RegistrarPagamento(rec, requisicao(funcionario, http.MethodPost, "/api/pagamentos", map[string]any{
		"parcelaId": parcela.ID, "valorPago": "100", "formaPagamento": "pix",
	}, nil))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "dataPagamento") {
		t.Fatalf("missing date: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.RegistrarPagamento(rec, requisicao(funcionario, http.MethodPost, "/api/pagamentos", map[string]any{
		"parcelaId": parcela.ID, "valorPago": "100", "formaPagamento": "pix", "dataPagamento": "2024-06-14",
		"numeroComprovante": "E123",
	}, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Message        string `json:"message"`
		SaldoRestante  string `json:"saldoRestante"`
		AcordoCumprido bool   `json:"acordoCumprido"`
		Pagamento      struct {
			NumeroComprovante string `json:"numeroComprovante"`
		} `json:"pagamento"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SaldoRestante != "400" || body.Message == "" || body.Pagamento.NumeroComprovante != "E123" {
		t.Fatalf("body = %+v", body)
	}

	rec = httptest.NewRecorder()
	h.PagarParcela(rec, requisicao(funcionario, http.MethodPost, "/", map[string]any{
		"valorPago": "400.01", "formaPagamento": "boleto",
	}, map[string]string{"id": fmt.Sprint(parcela.ID)}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("overpay status = %d", rec.Code)
	}
	var erro struct {
		Error  string            `json:"error"`
		Campos map[string]string `json:"campos"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &erro)
	if !strings.Contains(erro.Error, "R$ 400.00") || erro.Campos["saldoRestante"] != "400.00" {
		t.Fatalf("erro = %+v", erro)
	}

	rec = httptest.NewRecorder()
	h.PagarParcela(rec, requisicao(leitor, http.MethodPost, "/", map[string]any{
		"valorPago": "1", "formaPagamento": "pix",
	}, map[string]string{"id": fmt.Sprint(parcela.ID)}))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("visualizador status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.BuscarParcela(rec, requisicao(leitor, http.MethodGet, "/", nil, map[string]string{"id": fmt.Sprint(parcela.ID)}))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"totalPago":"100"`) {
		t.Fatalf("parcela: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.BuscarParcela(rec, requisicao(leitor, http.MethodGet, "/", nil, map[string]string{"id": "abc"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
}

func TestHandlerCancelar(t *testing.T) {
	s, db, _ := novoServico(t)
	h := NewHandler(s)
	p := processoJulgado(t, db, processo.TipoCompensacao, "001")
	a := firmar(t, s, NovoAcordo{ProcessoID: p.ID, ValorFinal: dec("100.00"), NumeroParcelas: 1})
	vars := map[string]string{"id": fmt.Sprint(a.ID)}

	rec := httptest.NewRecorder()
	h.Cancelar(rec, requisicao(funcionario, http.MethodPatch, "/", map[string]string{"motivo": "x"}, vars))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("funcionario status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.Cancelar(rec, requisicao(admin, http.MethodPatch, "/", map[string]string{"motivo": "acordo rescindido"}, vars))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"cancelado"`) {
		t.Fatalf("cancelar: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerStatus(t *testing.T) {
	s, db, _ := novoServico(t)
	h := NewHandler(s)
	p := processoJulgado(t, db, processo.TipoCompensacao, "001")
	firmar(t, s, NovoAcordo{ProcessoID: p.ID, ValorFinal: dec("300.00"), NumeroParcelas: 3,
		DataPrimeiraParcela: data("2024-05-10")})

	rec := httptest.NewRecorder()
	h.Status(rec, requisicao(funcionario, http.MethodGet, "/api/acordos/status?acao=atualizar", nil, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("funcionario atualizar = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Status(rec, requisicao(&auth.UsuarioCron, http.MethodPost, "/api/acordos/status", nil, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"parcelasAtrasadas":2`) {
		t.Fatalf("cron atualizar: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Status(rec, requisicao(leitor, http.MethodGet, "/api/acordos/status?acao=relatorio-vencidas", nil, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"quantidade":2`) {
		t.Fatalf("relatório json: %d %s", rec.Code, rec.Body.String())
	}

	for formato, tipo := range map[string]string{
		"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"pdf":  "application/pdf",
	} {
		rec = httptest.NewRecorder()
		h.Status(rec, requisicao(leitor, http.MethodGet, "/api/acordos/status?acao=relatorio-vencidas&formato="+formato, nil, nil))
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != tipo || rec.Body.Len() == 0 {
			t.Fatalf("%s: %d %q", formato, rec.Code, rec.Header().Get("Content-Type"))
		}
		if !strings.Contains(rec.Header().Get("Content-Disposition"), "parcelas-vencidas-20240615."+formato) {
			t.Fatalf("%s disposition = %q", formato, rec.Header().Get("Content-Disposition"))
		}
	}

	rec = httptest.NewRecorder()
	h.Status(rec, requisicao(leitor, http.MethodGet, "/api/acordos/status?acao=relatorio-vencidas&formato=csv", nil, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("csv = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.Status(rec, requisicao(leitor, http.MethodGet, "/api/acordos/status?acao=limpar", nil, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("acao inválida = %d", rec.Code)
	}
}
