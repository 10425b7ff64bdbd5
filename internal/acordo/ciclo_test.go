package acordo

import (
	"testing"

	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
)

func TestProximoStatusProcesso(t *testing.T) {
	pol := PoliticaPadrao()
	cases := []struct {
		nome  string
		tipo  processo.Tipo
		fatos Fatos
		orig  Origem
		want  Decisao
	}{
		{"todas pagas", processo.TipoCompensacao, Fatos{TotalParcelas: 3, ParcelasPagas: 3}, OrigemPagamento,
			Decisao{Cumprido: true, StatusProcesso: processo.StatusConcluido}},
		{"faltando parcela", processo.TipoCompensacao, Fatos{TotalParcelas: 3, ParcelasPagas: 2}, OrigemParcela, Decisao{}},
		{"sem parcelas", processo.TipoCompensacao, Fatos{}, OrigemPagamento, Decisao{}},
		{"custas devidas", processo.TipoTransacaoExcepcional, Fatos{TotalParcelas: 1, ParcelasPagas: 1, CustasDevidas: true}, OrigemPagamento, Decisao{}},
		{"custas pagas", processo.TipoTransacaoExcepcional, Fatos{TotalParcelas: 1, ParcelasPagas: 1}, OrigemCustas,
			Decisao{Cumprido: true, StatusProcesso: processo.StatusConcluido}},
		{"detalhes executados", processo.TipoDacaoPagamento, Fatos{TotalDetalhes: 2, DetalhesExecutados: 2}, OrigemDetalhes,
			Decisao{Cumprido: true, StatusProcesso: processo.StatusAcordoFirmado}},
		{"detalhe pendente", processo.TipoDacaoPagamento, Fatos{TotalDetalhes: 2, DetalhesExecutados: 1}, OrigemDetalhes, Decisao{}},
		{"manual sem processo", processo.TipoCompensacao, Fatos{}, OrigemManual, Decisao{Cumprido: true}},
		{"manual com processo", processo.TipoDacaoPagamento, Fatos{AtualizarProcesso: true}, OrigemManual,
			Decisao{Cumprido: true, StatusProcesso: processo.StatusConcluido}},
		{"manual transacao", processo.TipoTransacaoExcepcional, Fatos{AtualizarProcesso: true}, OrigemManual, Decisao{}},
	}
	for _, c := range cases {
		if got := ProximoStatusProcesso(c.tipo, c.fatos, c.orig, pol); got != c.want {
			t.Fatalf("%s: got %+v, want %+v", c.nome, got, c.want)
		}
	}
}

func TestPoliticaConfiguravel(t *testing.T) {
	pol := Politica{OrigemParcela: processo.StatusAcordoFirmado}
	got := ProximoStatusProcesso(processo.TipoCompensacao, Fatos{TotalParcelas: 1, ParcelasPagas: 1}, OrigemParcela, pol)
	if got.StatusProcesso != processo.StatusAcordoFirmado {
		t.Fatalf("expected ACORDO_FIRMADO from policy, got %s", got.StatusProcesso)
	}
	got = ProximoStatusProcesso(processo.TipoCompensacao, Fatos{TotalParcelas: 1, ParcelasPagas: 1}, OrigemPagamento, pol)
	if got.StatusProcesso != processo.StatusConcluido {
		t.Fatalf("missing origin must fall back to default, got %s", got.StatusProcesso)
	}
}
