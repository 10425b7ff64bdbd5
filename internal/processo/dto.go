package processo

import "github.com/shopspring/decimal"

type createDTO struct {
	Numero         string          `json:"numero"`
	Tipo           Tipo            `json:"tipo"`
	ValorOriginal  decimal.Decimal `json:"valorOriginal"`
	Assunto        string          `json:"assunto"`
	Observacoes    string          `json:"observacoes"`
	DataRecepcao   *string         `json:"dataRecepcao"`
	ContribuinteID uint            `json:"contribuinteId"`
}

type statusDTO struct {
	Status     Status `json:"status"`
	Observacao string `json:"observacao"`
}

type updateDTO struct {
	ValorOriginal *decimal.Decimal `json:"valorOriginal"`
	Assunto       *string          `json:"assunto"`
	Observacoes   *string          `json:"observacoes"`
}

// Detalhe é a resposta de GET /api/processos/{id}.
type Detalhe struct {
	Processo
	ProximosStatus []Status `json:"proximosStatus"`
}
