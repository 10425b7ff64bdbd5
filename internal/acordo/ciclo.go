package acordo

import (
	"fmt"

	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
)

// Origem identifica o caminho que disparou a avaliação de cumprimento.
type Origem int

const (
	// OrigemPagamento é POST /api/pagamentos.
	OrigemPagamento Origem = iota
	// OrigemParcela é o pagamento ou a baixa manual de uma parcela.
	OrigemParcela
	OrigemCustas
	OrigemDetalhes
	// OrigemManual é a conclusão direta do acordo.
	OrigemManual
)

func (o Origem) String() string {
	switch o {
	case OrigemPagamento:
		return "pagamento"
	case OrigemParcela:
		return "parcela"
	case OrigemCustas:
		return "custas"
	case OrigemDetalhes:
		return "detalhes"
	case OrigemManual:
		return "manual"
	}
	return fmt.Sprintf("origem(%d)", int(o))
}

// Politica define o status do processo ao cumprir o acordo, por origem.
type Politica map[Origem]processo.Status

// PoliticaPadrao conclui o processo em todos os caminhos, exceto dação
// (detalhes), que volta a ACORDO_FIRMADO.
func PoliticaPadrao() Politica {
	return Politica{
		OrigemPagamento: processo.StatusConcluido,
		OrigemParcela:   processo.StatusConcluido,
		OrigemCustas:    processo.StatusConcluido,
		OrigemDetalhes:  processo.StatusAcordoFirmado,
		OrigemManual:    processo.StatusConcluido,
	}
}

func (p Politica) destino(o Origem) processo.Status {
	if s, ok := p[o]; ok && s != "" {
		return s
	}
	return PoliticaPadrao()[o]
}

// Fatos são os dados do acordo relevantes para o cumprimento.
type Fatos struct {
	TotalParcelas      int
	ParcelasPagas      int
	CustasDevidas      bool
	TotalDetalhes      int
	DetalhesExecutados int
	// AtualizarProcesso só é considerado na conclusão manual.
	AtualizarProcesso bool
}

// Decisao é o resultado da avaliação. StatusProcesso vazio mantém o processo.
type Decisao struct {
	Cumprido       bool
	StatusProcesso processo.Status
}

// PermiteConclusaoDireta informa se o tipo aceita conclusão sem o
// acompanhamento das parcelas.
func PermiteConclusaoDireta(tipo processo.Tipo) bool {
	return tipo == processo.TipoCompensacao || tipo == processo.TipoDacaoPagamento
}

// ProximoStatusProcesso decide se o acordo está cumprido e qual status
// aplicar ao processo.
func ProximoStatusProcesso(tipo processo.Tipo, f Fatos, o Origem, pol Politica) Decisao {
	var cumprido bool
	switch o {
	case OrigemPagamento, OrigemParcela, OrigemCustas:
		cumprido = f.TotalParcelas > 0 && f.ParcelasPagas == f.TotalParcelas
		if tipo == processo.TipoTransacaoExcepcional && f.CustasDevidas {
			cumprido = false
		}
	case OrigemDetalhes:
		cumprido = f.TotalDetalhes > 0 && f.DetalhesExecutados == f.TotalDetalhes
	case OrigemManual:
		if !PermiteConclusaoDireta(tipo) {
			return Decisao{}
		}
		if !f.AtualizarProcesso {
			return Decisao{Cumprido: true}
		}
		cumprido = true
	}
	if !cumprido {
		return Decisao{}
	}
	return Decisao{Cumprido: true, StatusProcesso: pol.destino(o)}
}
