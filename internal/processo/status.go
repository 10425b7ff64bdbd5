package processo

import "github.com/CamaraFiscal/api-conciliacao/internal/erros"

// Status do processo ao longo do fluxo da câmara.
type Status string

const (
	StatusRecepcionado     Status = "RECEPCIONADO"
	StatusEmAnalise        Status = "EM_ANALISE"
	StatusEmPauta          Status = "EM_PAUTA"
	StatusSuspenso         Status = "SUSPENSO"
	StatusPedidoVista      Status = "PEDIDO_VISTA"
	StatusPedidoDiligencia Status = "PEDIDO_DILIGENCIA"
	StatusJulgado          Status = "JULGADO"
	StatusAcordoFirmado    Status = "ACORDO_FIRMADO"
	StatusEmCumprimento    Status = "EM_CUMPRIMENTO"
	StatusConcluido        Status = "CONCLUIDO"
)

var transicoes = map[Status][]Status{
	StatusRecepcionado:     {StatusEmAnalise, StatusSuspenso},
	StatusEmAnalise:        {StatusEmPauta, StatusSuspenso, StatusPedidoDiligencia},
	StatusEmPauta:          {StatusJulgado, StatusEmAnalise, StatusPedidoVista, StatusPedidoDiligencia, StatusSuspenso},
	StatusPedidoVista:      {StatusEmPauta, StatusEmAnalise},
	StatusPedidoDiligencia: {StatusEmAnalise, StatusEmPauta},
	StatusSuspenso:         {StatusEmAnalise, StatusEmPauta},
	StatusJulgado:          {StatusAcordoFirmado, StatusConcluido},
	StatusAcordoFirmado:    {StatusEmCumprimento, StatusConcluido, StatusJulgado},
	StatusEmCumprimento:    {StatusConcluido, StatusAcordoFirmado, StatusJulgado},
	StatusConcluido:        nil,
}

func (s Status) Valido() bool {
	_, ok := transicoes[s]
	return ok
}

// PodeTransitar informa se de → para é permitida. Repetir o status é sempre aceito.
func PodeTransitar(de, para Status) bool {
	if de == para {
		return para.Valido()
	}
	for _, s := range transicoes[de] {
		if s == para {
			return true
		}
	}
	return false
}

// ValidarTransicao devolve EstadoInvalido quando a transição não é permitida.
func ValidarTransicao(de, para Status) error {
	if !para.Valido() {
		return erros.Invalido("Status inválido: %s", para).ComCampo("status", "inválido")
	}
	if !PodeTransitar(de, para) {
		return erros.EstadoInvalidoErr("Transição de %s para %s não permitida", de, para)
	}
	return nil
}

// Proximos lista os status alcançáveis a partir de s.
func Proximos(s Status) []Status {
	return append([]Status(nil), transicoes[s]...)
}

// DoAcordo informa se s é um status conduzido pelo ciclo do acordo.
func DoAcordo(s Status) bool {
	switch s {
	case StatusJulgado, StatusAcordoFirmado, StatusEmCumprimento, StatusConcluido:
		return true
	}
	return false
}
