package acordo

import "github.com/shopspring/decimal"

type inscricaoDTO struct {
	NumeroInscricao string          `json:"numeroInscricao"`
	Valor           decimal.Decimal `json:"valor"`
}

type detalheDTO struct {
	Tipo       string          `json:"tipo"`
	Descricao  string          `json:"descricao"`
	Valor      decimal.Decimal `json:"valor"`
	Inscricoes []inscricaoDTO  `json:"inscricoes"`
}

type criarAcordoDTO struct {
	ProcessoID          uint             `json:"processoId"`
	ValorFinal          decimal.Decimal  `json:"valorFinal"`
	NumeroParcelas      int              `json:"numeroParcelas"`
	DataPrimeiraParcela string           `json:"dataPrimeiraParcela"`
	CustasAdvocaticias  *decimal.Decimal `json:"custasAdvocaticias"`
	Observacoes         string           `json:"observacoes"`
	Detalhes            []detalheDTO     `json:"detalhes"`
}

type pagamentoDTO struct {
	ParcelaID         uint            `json:"parcelaId"`
	DataPagamento     *string         `json:"dataPagamento"`
	ValorPago         decimal.Decimal `json:"valorPago"`
	FormaPagamento    FormaPagamento  `json:"formaPagamento"`
	NumeroComprovante string          `json:"numeroComprovante"`
	Observacoes       string          `json:"observacoes"`
}

type atualizarParcelaDTO struct {
	DataVencimento string        `json:"dataVencimento"`
	DataPagamento  *string       `json:"dataPagamento"`
	Status         StatusParcela `json:"status"`
}

type concluirDTO struct {
	AtualizarProcesso bool `json:"atualizarProcesso"`
}

type detalheStatusDTO struct {
	DetalheID   uint    `json:"detalheId"`
	Status      string  `json:"status"`
	Observacoes *string `json:"observacoes"`
}

type custasDTO struct {
	DataPagamento *string `json:"dataPagamento"`
}

type cancelarDTO struct {
	Motivo string `json:"motivo"`
}

type respostaPagamento struct {
	Message string `json:"message"`
	*ResultadoPagamento
}
