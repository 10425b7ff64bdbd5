package pauta

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/contribuinte"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"github.com/CamaraFiscal/api-conciliacao/internal/testutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ctx         = context.Background()
	funcionario = &auth.Usuario{ID: "f-1", Papel: auth.PapelFuncionario}
	leitor      = &auth.Usuario{ID: "v-1", Papel: auth.PapelVisualizador}
)

func novoServico(t *testing.T) (*Servico, *gorm.DB) {
	t.Helper()
	modelos := append([]any{&contribuinte.Contribuinte{}, &processo.Processo{},
		&historico.HistoricoProcesso{}, &historico.LogAuditoria{}}, Modelos()...)
	db := testutil.NovoDB(t, modelos...)
	s := NewServico(db)
	s.Agora = func() time.Time { return time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC) }
	return s, db
}

func novosProcessos(t *testing.T, db *gorm.DB, n int) []*processo.Processo {
	t.Helper()
	c := &contribuinte.Contribuinte{Nome: "Contribuinte", Documento: "98765432100"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("criar contribuinte: %v", err)
	}
	out := make([]*processo.Processo, n)
	for i := range out {
		p := &processo.Processo{
			Numero:         fmt.Sprintf("CCF-%03d", i+1),
			Tipo:           processo.TipoCompensacao,
			Status:         processo.StatusEmAnalise,
			ValorOriginal:  decimal.NewFromInt(1000),
			ContribuinteID: c.ID,
			DataRecepcao:   time.Now(),
		}
		if err := processo.NewRepository(db).Create(p); err != nil {
			t.Fatalf("criar processo: %v", err)
		}
		out[i] = p
	}
	return out
}

func statusDe(t *testing.T, db *gorm.DB, id uint) processo.Status {
	t.Helper()
	p, err := processo.NewRepository(db).FindByID(id)
	if err != nil {
		t.Fatalf("buscar processo: %v", err)
	}
	return p.Status
}

func novaPauta(t *testing.T, s *Servico, numero string) *Pauta {
	t.Helper()
	p, err := s.CriarPauta(ctx, funcionario, NovaPauta{Numero: numero, DataSessao: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("criar pauta: %v", err)
	}
	return p
}

func TestIncluirERemoverProcesso(t *testing.T) {
	s, db := novoServico(t)
	procs := novosProcessos(t, db, 3)
	p := novaPauta(t, s, "P-01")

	for _, proc := range procs {
		if _, err := s.IncluirProcesso(ctx, funcionario, p.ID, Inclusao{ProcessoID: proc.ID, RelatorID: "rel-1"}); err != nil {
			t.Fatalf("incluir %s: %v", proc.Numero, err)
		}
		if got := statusDe(t, db, proc.ID); got != processo.StatusEmPauta {
			t.Fatalf("expected EM_PAUTA, got %s", got)
		}
	}

	outra := novaPauta(t, s, "P-02")
	if _, err := s.IncluirProcesso(ctx, funcionario, outra.ID, Inclusao{ProcessoID: procs[0].ID}); !erros.DoTipo(err, erros.EstadoInvalido) {
		t.Fatalf("expected EstadoInvalido for processo already in open pauta, got %v", err)
	}

	if err := s.RemoverProcesso(ctx, funcionario, p.ID, procs[0].ID); err != nil {
		t.Fatalf("remover: %v", err)
	}
	if got := statusDe(t, db, procs[0].ID); got != processo.StatusEmAnalise {
		t.Fatalf("expected EM_ANALISE after removal, got %s", got)
	}
	itens, err := NewRepository(db).Itens(p.ID)
	if err != nil {
		t.Fatalf("itens: %v", err)
	}
	if len(itens) != 2 || itens[0].Ordem != 1 || itens[1].Ordem != 2 || itens[0].ProcessoID != procs[1].ID {
		t.Fatalf("order not compacted: %+v", itens)
	}
}

func TestReordenar(t *testing.T) {
	s, db := novoServico(t)
	procs := novosProcessos(t, db, 2)
	p := novaPauta(t, s, "P-01")
	for _, proc := range procs {
		if _, err := s.IncluirProcesso(ctx, funcionario, p.ID, Inclusao{ProcessoID: proc.ID}); err != nil {
			t.Fatalf("incluir: %v", err)
		}
	}

	if err := s.Reordenar(ctx, funcionario, p.ID, []uint{procs[0].ID}); !erros.DoTipo(err, erros.Validacao) {
		t.Fatalf("expected Validacao for incomplete order, got %v", err)
	}
	if err := s.Reordenar(ctx, funcionario, p.ID, []uint{procs[1].ID, procs[0].ID}); err != nil {
		t.Fatalf("reordenar: %v", err)
	}
	got, err := NewRepository(db).FindByID(p.ID)
	if err != nil {
		t.Fatalf("buscar pauta: %v", err)
	}
	if got.Processos[0].ProcessoID != procs[1].ID || got.Processos[0].Processo.Numero != procs[1].Numero {
		t.Fatalf("unexpected order: %+v", got.Processos)
	}
}

func TestJulgamento(t *testing.T) {
	s, db := novoServico(t)
	procs := novosProcessos(t, db, 2)
	p := novaPauta(t, s, "P-01")
	for _, proc := range procs {
		if _, err := s.IncluirProcesso(ctx, funcionario, p.ID, Inclusao{ProcessoID: proc.ID}); err != nil {
			t.Fatalf("incluir: %v", err)
		}
	}

	sessao, err := s.AbrirSessao(ctx, funcionario, p.ID, NovaSessao{Presidente: "Dra. Silva", Conselheiros: []string{"A", "B"}})
	if err != nil {
		t.Fatalf("abrir sessão: %v", err)
	}
	if _, err := s.IncluirProcesso(ctx, funcionario, p.ID, Inclusao{ProcessoID: procs[0].ID}); !erros.DoTipo(err, erros.EstadoInvalido) {
		t.Fatalf("expected pauta em julgamento to reject inclusion, got %v", err)
	}

	d, err := s.RegistrarDecisao(ctx, funcionario, sessao.ID, NovaDecisao{
		ProcessoID: procs[0].ID,
		Tipo:       "deferido",
		Votos: []NovoVoto{
			{ConselheiroID: "A", Sentido: VotoFavoravel},
			{ConselheiroID: "B", Sentido: VotoContrario},
		},
	})
	if err != nil {
		t.Fatalf("registrar decisão: %v", err)
	}
	if !d.Definitiva || len(d.Votos) != 2 {
		t.Fatalf("unexpected decisão: %+v", d)
	}
	if got := statusDe(t, db, procs[0].ID); got != processo.StatusJulgado {
		t.Fatalf("expected JULGADO, got %s", got)
	}
	if _, err := s.RegistrarDecisao(ctx, funcionario, sessao.ID, NovaDecisao{ProcessoID: procs[0].ID, Tipo: DecisaoIndeferido}); !erros.DoTipo(err, erros.EstadoInvalido) {
		t.Fatalf("expected second decision to be rejected, got %v", err)
	}

	ultima, err := NewRepository(db).UltimaDecisaoDefinitiva(procs[0].ID)
	if err != nil || !ultima.Tipo.Favoravel() {
		t.Fatalf("expected favorable definitive decision, got %+v, %v", ultima, err)
	}

	fechada, err := s.EncerrarSessao(ctx, funcionario, sessao.ID, "Ata da sessão")
	if err != nil {
		t.Fatalf("encerrar: %v", err)
	}
	if fechada.Aberta() {
		t.Fatalf("sessão should be closed")
	}
	if got := statusDe(t, db, procs[1].ID); got != processo.StatusEmAnalise {
		t.Fatalf("undecided processo should return to EM_ANALISE, got %s", got)
	}
	pauta, err := NewRepository(db).FindByID(p.ID)
	if err != nil || pauta.Status != StatusJulgada {
		t.Fatalf("expected pauta julgada, got %+v, %v", pauta, err)
	}
	if _, err := s.RegistrarDecisao(ctx, funcionario, sessao.ID, NovaDecisao{ProcessoID: procs[1].ID, Tipo: DecisaoDeferido}); !erros.DoTipo(err, erros.EstadoInvalido) {
		t.Fatalf("expected closed session to reject decisions, got %v", err)
	}
}

func TestDecisaoPedidoVista(t *testing.T) {
	s, db := novoServico(t)
	procs := novosProcessos(t, db, 1)
	p := novaPauta(t, s, "P-01")
	if _, err := s.IncluirProcesso(ctx, funcionario, p.ID, Inclusao{ProcessoID: procs[0].ID}); err != nil {
		t.Fatalf("incluir: %v", err)
	}
	sessao, err := s.AbrirSessao(ctx, funcionario, p.ID, NovaSessao{})
	if err != nil {
		t.Fatalf("abrir sessão: %v", err)
	}
	d, err := s.RegistrarDecisao(ctx, funcionario, sessao.ID, NovaDecisao{ProcessoID: procs[0].ID, Tipo: DecisaoPedidoVista})
	if err != nil {
		t.Fatalf("registrar: %v", err)
	}
	if d.Definitiva {
		t.Fatalf("pedido de vista is not definitive")
	}
	if got := statusDe(t, db, procs[0].ID); got != processo.StatusPedidoVista {
		t.Fatalf("expected PEDIDO_VISTA, got %s", got)
	}
	if _, err := NewRepository(db).UltimaDecisaoDefinitiva(procs[0].ID); err == nil {
		t.Fatalf("expected no definitive decision")
	}
}

func TestPermissoes(t *testing.T) {
	s, _ := novoServico(t)
	if _, err := s.CriarPauta(ctx, leitor, NovaPauta{Numero: "P", DataSessao: time.Now()}); !erros.DoTipo(err, erros.Permissao) {
		t.Fatalf("expected Permissao, got %v", err)
	}
	if _, err := s.CriarPauta(ctx, nil, NovaPauta{Numero: "P", DataSessao: time.Now()}); !erros.DoTipo(err, erros.Autenticacao) {
		t.Fatalf("expected Autenticacao, got %v", err)
	}
}
