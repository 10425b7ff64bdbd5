package comentario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/contribuinte"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"github.com/CamaraFiscal/api-conciliacao/internal/testutil"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ana   = &auth.Usuario{ID: "u-1", Nome: "Ana", Papel: auth.PapelFuncionario}
	bruno = &auth.Usuario{ID: "u-2", Nome: "Bruno", Papel: auth.PapelFuncionario}
	admin = &auth.Usuario{ID: "a-1", Nome: "Admin", Papel: auth.PapelAdmin}
)

func novoHandler(t *testing.T) (*Handler, *gorm.DB, uint) {
	t.Helper()
	db := testutil.NovoDB(t, &contribuinte.Contribuinte{}, &processo.Processo{},
		&historico.HistoricoProcesso{}, &historico.LogAuditoria{}, &Comentario{})
	c := &contribuinte.Contribuinte{Nome: "Empresa X", Documento: "12345678000190"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("criar contribuinte: %v", err)
	}
	p := &processo.Processo{Numero: "CCF-1", Tipo: processo.TipoCompensacao, Status: processo.StatusEmAnalise,
		ValorOriginal: decimal.NewFromInt(10), ContribuinteID: c.ID}
	if err := processo.NewRepository(db).Create(p); err != nil {
		t.Fatalf("criar processo: %v", err)
	}
	return NewHandler(NewRepository(db)), db, p.ID
}

func requisicao(u *auth.Usuario, method string, body any, id uint) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/", &buf)
	req = req.WithContext(auth.ComUsuario(req.Context(), u))
	return mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(id)})
}

func criar(t *testing.T, h *Handler, u *auth.Usuario, processoID uint, texto string) comentarioDTO {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Criar(rec, requisicao(u, http.MethodPost, map[string]string{"texto": texto}, processoID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("criar: %d %s", rec.Code, rec.Body.String())
	}
	var out comentarioDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestCriarEListar(t *testing.T) {
	h, _, processoID := novoHandler(t)
	c := criar(t, h, ana, processoID, "  Contribuinte pediu prazo  ")
	if c.Texto != "Contribuinte pediu prazo" || c.Autor.Tipo != "usuario" || c.Autor.Nome != "Ana" {
		t.Fatalf("comentario = %+v", c)
	}

	rec := httptest.NewRecorder()
	h.Criar(rec, requisicao(ana, http.MethodPost, map[string]string{"texto": " "}, processoID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("texto vazio = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.Criar(rec, requisicao(ana, http.MethodPost, map[string]string{"texto": "x"}, 999))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("processo inexistente = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ListarPorProcesso(rec, requisicao(ana, http.MethodGet, nil, processoID))
	var list []comentarioDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("listar: %v %s", err, rec.Body.String())
	}
}

func TestSomenteAutorAltera(t *testing.T) {
	h, db, processoID := novoHandler(t)
	c := criar(t, h, ana, processoID, "original")

	rec := httptest.NewRecorder()
	h.Atualizar(rec, requisicao(bruno, http.MethodPut, map[string]string{"texto": "editado"}, c.ID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("outro usuário = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.Atualizar(rec, requisicao(ana, http.MethodPut, map[string]string{"texto": "editado"}, c.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("autor = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Remover(rec, requisicao(bruno, http.MethodDelete, nil, c.ID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("remover por outro = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.Remover(rec, requisicao(admin, http.MethodDelete, nil, c.ID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remover por admin = %d", rec.Code)
	}

	var n int64
	db.Model(&historico.LogAuditoria{}).Where("entidade = ?", "Comentario").Count(&n)
	if n != 3 {
		t.Fatalf("audit rows = %d", n)
	}
}

func TestComentarioDeSistema(t *testing.T) {
	h, db, processoID := novoHandler(t)
	c := &Comentario{ProcessoID: processoID, Texto: "gerado", Sistema: true}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("criar: %v", err)
	}
	rec := httptest.NewRecorder()
	h.Remover(rec, requisicao(admin, http.MethodDelete, nil, c.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("remover sistema = %d", rec.Code)
	}
	if toDTO(*c).Autor.Tipo != "sistema" {
		t.Fatalf("autor = %+v", toDTO(*c).Autor)
	}
}
