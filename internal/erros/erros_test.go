package erros

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NaoAutenticado("sem sessão"), http.StatusUnauthorized},
		{SemPermissao("papel"), http.StatusForbidden},
		{NaoEncontradoErr("parcela"), http.StatusNotFound},
		{Invalido("valor"), http.StatusBadRequest},
		{EstadoInvalidoErr("acordo"), http.StatusBadRequest},
		{InternoErr(errors.New("boom"), "falha"), http.StatusInternalServerError},
		{errors.New("qualquer"), http.StatusInternalServerError},
		{fmt.Errorf("embrulhado: %w", SemPermissao("x")), http.StatusForbidden},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Fatalf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestDeBusca(t *testing.T) {
	if err := DeBusca(nil, "parcela"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	err := DeBusca(gorm.ErrRecordNotFound, "parcela")
	if !DoTipo(err, NaoEncontrado) {
		t.Fatalf("expected NaoEncontrado, got %v", err)
	}
	err = DeBusca(errors.New("conexão"), "parcela")
	if !DoTipo(err, Interno) {
		t.Fatalf("expected Interno, got %v", err)
	}
	if !errors.Is(err, err.(*Erro).Causa) {
		t.Fatalf("expected cause to be unwrapped")
	}
}

func TestComCampo(t *testing.T) {
	e := Invalido("valor excede").ComCampo("saldoRestante", "500.00")
	if e.Campos["saldoRestante"] != "500.00" {
		t.Fatalf("unexpected campos: %+v", e.Campos)
	}
}
