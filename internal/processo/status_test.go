package processo

import (
	"testing"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
)

func TestPodeTransitar(t *testing.T) {
	cases := []struct {
		de, para Status
		want     bool
	}{
		{StatusRecepcionado, StatusEmAnalise, true},
		{StatusRecepcionado, StatusJulgado, false},
		{StatusEmPauta, StatusPedidoVista, true},
		{StatusPedidoVista, StatusEmPauta, true},
		{StatusJulgado, StatusAcordoFirmado, true},
		{StatusAcordoFirmado, StatusEmCumprimento, true},
		{StatusEmCumprimento, StatusConcluido, true},
		{StatusEmCumprimento, StatusEmAnalise, false},
		{StatusConcluido, StatusEmAnalise, false},
		{StatusConcluido, StatusConcluido, true},
	}
	for _, c := range cases {
		if got := PodeTransitar(c.de, c.para); got != c.want {
			t.Fatalf("PodeTransitar(%s, %s) = %v, want %v", c.de, c.para, got, c.want)
		}
	}
}

func TestValidarTransicao(t *testing.T) {
	if err := ValidarTransicao(StatusConcluido, StatusEmAnalise); !erros.DoTipo(err, erros.EstadoInvalido) {
		t.Fatalf("expected EstadoInvalido, got %v", err)
	}
	if err := ValidarTransicao(StatusEmAnalise, Status("ARQUIVADO")); !erros.DoTipo(err, erros.Validacao) {
		t.Fatalf("expected Validacao for unknown status, got %v", err)
	}
	if err := ValidarTransicao(StatusEmAnalise, StatusEmPauta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProximosRetornaCopia(t *testing.T) {
	p := Proximos(StatusRecepcionado)
	p[0] = StatusConcluido
	if Proximos(StatusRecepcionado)[0] != StatusEmAnalise {
		t.Fatalf("transition table was mutated")
	}
	if len(Proximos(StatusConcluido)) != 0 {
		t.Fatalf("CONCLUIDO must be terminal")
	}
}

func TestDoAcordo(t *testing.T) {
	for s, want := range map[Status]bool{
		StatusJulgado:       true,
		StatusAcordoFirmado: true,
		StatusEmCumprimento: true,
		StatusConcluido:     true,
		StatusEmPauta:       false,
		StatusSuspenso:      false,
	} {
		if got := DoAcordo(s); got != want {
			t.Fatalf("DoAcordo(%s) = %v, want %v", s, got, want)
		}
	}
}
