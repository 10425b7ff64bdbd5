package processo

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/contribuinte"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/testutil"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var funcionario = &auth.Usuario{ID: "u-1", Nome: "Ana", Papel: auth.PapelFuncionario}

func novoHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	db := testutil.NovoDB(t, &contribuinte.Contribuinte{}, &Processo{},
		&historico.HistoricoProcesso{}, &historico.LogAuditoria{})
	return NewHandler(NewRepository(db), historico.NewRepository(db)), db
}

func requisicao(method, path string, body any, vars map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(auth.ComUsuario(req.Context(), funcionario))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func criarProcesso(t *testing.T, db *gorm.DB, status Status) *Processo {
	t.Helper()
	c := &contribuinte.Contribuinte{Nome: "Empresa X", Documento: "12345678000190"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("criar contribuinte: %v", err)
	}
	p := &Processo{
		Numero:         "CCF-" + string(status),
		Tipo:           TipoCompensacao,
		Status:         status,
		ValorOriginal:  decimal.RequireFromString("1000.00"),
		ContribuinteID: c.ID,
	}
	if err := NewRepository(db).Create(p); err != nil {
		t.Fatalf("criar processo: %v", err)
	}
	return p
}

func TestCriarProcesso(t *testing.T) {
	h, db := novoHandler(t)
	c := &contribuinte.Contribuinte{Nome: "Fulano", Documento: "12345678901"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("criar contribuinte: %v", err)
	}
	body := map[string]any{
		"numero":         "CCF-2024-001",
		"tipo":           "COMPENSACAO",
		"valorOriginal":  "1500.50",
		"contribuinteId": c.ID,
		"dataRecepcao":   "2024-03-01",
	}
	w := httptest.NewRecorder()
	h.Criar(w, requisicao(http.MethodPost, "/api/processos", body, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var p Processo
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != StatusRecepcionado || !p.ValorOriginal.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("unexpected processo: %+v", p)
	}

	w = httptest.NewRecorder()
	h.Criar(w, requisicao(http.MethodPost, "/api/processos", body, nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate numero, got %d", w.Code)
	}

	var n int64
	db.Model(&historico.LogAuditoria{}).Where("entidade = ?", "Processo").Count(&n)
	if n != 1 {
		t.Fatalf("expected 1 audit row, got %d", n)
	}
}

func TestCriarProcessoContribuinteInexistente(t *testing.T) {
	h, _ := novoHandler(t)
	body := map[string]any{"numero": "X-1", "tipo": "DACAO_PAGAMENTO", "valorOriginal": 10, "contribuinteId": 99}
	w := httptest.NewRecorder()
	h.Criar(w, requisicao(http.MethodPost, "/api/processos", body, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAlterarStatus(t *testing.T) {
	h, db := novoHandler(t)
	p := criarProcesso(t, db, StatusRecepcionado)
	vars := map[string]string{"id": "1"}

	w := httptest.NewRecorder()
	h.AlterarStatus(w, requisicao(http.MethodPatch, "/api/processos/1/status", map[string]string{"status": "em_analise"}, vars))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.AlterarStatus(w, requisicao(http.MethodPatch, "/api/processos/1/status", map[string]string{"status": "CONCLUIDO"}, vars))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid transition, got %d", w.Code)
	}

	// repetir o status não gera histórico
	w = httptest.NewRecorder()
	h.AlterarStatus(w, requisicao(http.MethodPatch, "/api/processos/1/status", map[string]string{"status": "EM_ANALISE"}, vars))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for same status, got %d", w.Code)
	}

	hist, err := historico.NewRepository(db).ListarPorProcesso(p.ID)
	if err != nil {
		t.Fatalf("listar histórico: %v", err)
	}
	if len(hist) != 1 || hist[0].StatusAnterior != "RECEPCIONADO" || hist[0].StatusNovo != "EM_ANALISE" || hist[0].UsuarioID != "u-1" {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestAlterarStatusComAcordoAtivo(t *testing.T) {
	h, db := novoHandler(t)
	p := criarProcesso(t, db, StatusAcordoFirmado)
	if err := db.Exec("CREATE TABLE acordos (id integer primary key, processo_id integer, status text)").Error; err != nil {
		t.Fatalf("criar tabela: %v", err)
	}
	if err := db.Exec("INSERT INTO acordos (processo_id, status) VALUES (1, 'ativo')").Error; err != nil {
		t.Fatalf("inserir acordo: %v", err)
	}
	vars := map[string]string{"id": "1"}

	for _, para := range []string{"CONCLUIDO", "JULGADO", "EM_CUMPRIMENTO"} {
		w := httptest.NewRecorder()
		h.AlterarStatus(w, requisicao(http.MethodPatch, "/api/processos/1/status", map[string]string{"status": para}, vars))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", para, w.Code, w.Body.String())
		}
	}
	atual, err := NewRepository(db).FindByID(p.ID)
	if err != nil {
		t.Fatalf("buscar: %v", err)
	}
	if atual.Status != StatusAcordoFirmado {
		t.Fatalf("expected status unchanged, got %s", atual.Status)
	}
	hist, _ := historico.NewRepository(db).ListarPorProcesso(p.ID)
	if len(hist) != 0 {
		t.Fatalf("expected no history, got %d", len(hist))
	}

	// acordo cancelado libera a alteração manual
	if err := db.Exec("UPDATE acordos SET status = 'cancelado'").Error; err != nil {
		t.Fatalf("atualizar acordo: %v", err)
	}
	w := httptest.NewRecorder()
	h.AlterarStatus(w, requisicao(http.MethodPatch, "/api/processos/1/status", map[string]string{"status": "JULGADO"}, vars))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeletarBloqueadoComVinculos(t *testing.T) {
	h, db := novoHandler(t)
	criarProcesso(t, db, StatusJulgado)
	if err := db.Exec("CREATE TABLE acordos (id integer primary key, processo_id integer)").Error; err != nil {
		t.Fatalf("criar tabela: %v", err)
	}
	if err := db.Exec("INSERT INTO acordos (processo_id) VALUES (1)").Error; err != nil {
		t.Fatalf("inserir acordo: %v", err)
	}

	w := httptest.NewRecorder()
	h.Deletar(w, requisicao(http.MethodDelete, "/api/processos/1", nil, map[string]string{"id": "1"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	if err := db.Exec("DELETE FROM acordos").Error; err != nil {
		t.Fatalf("limpar: %v", err)
	}
	w = httptest.NewRecorder()
	h.Deletar(w, requisicao(http.MethodDelete, "/api/processos/1", nil, map[string]string{"id": "1"}))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := NewRepository(db).FindByID(1); err == nil {
		t.Fatalf("expected processo to be soft deleted")
	}
}
