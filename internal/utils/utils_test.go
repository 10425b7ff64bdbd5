package utils

import (
	"testing"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/shopspring/decimal"
)

func TestDividir(t *testing.T) {
	partes := Dividir(decimal.RequireFromString("1000"), 3)
	if len(partes) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(partes))
	}
	if !partes[0].Equal(decimal.RequireFromString("333.33")) {
		t.Fatalf("unexpected first part %s", partes[0])
	}
	if !partes[2].Equal(decimal.RequireFromString("333.34")) {
		t.Fatalf("unexpected last part %s", partes[2])
	}
	soma := decimal.Zero
	for _, p := range partes {
		soma = soma.Add(p)
	}
	if !soma.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("parts do not add up: %s", soma)
	}
	if Dividir(decimal.NewFromInt(10), 0) != nil {
		t.Fatalf("expected nil for n=0")
	}
}

func TestFormatarReais(t *testing.T) {
	if got := FormatarReais(decimal.NewFromInt(500)); got != "R$ 500.00" {
		t.Fatalf("got %q", got)
	}
}

func TestParseData(t *testing.T) {
	d, err := ParseData("dataPagamento", "2024-03-15")
	if err != nil || d.Day() != 15 {
		t.Fatalf("unexpected %v %v", d, err)
	}
	if _, err := ParseData("dataPagamento", "2024-03-15T10:00:00Z"); err != nil {
		t.Fatalf("RFC3339 rejected: %v", err)
	}
	_, err = ParseData("dataPagamento", "15/03/2024")
	if !erros.DoTipo(err, erros.Validacao) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if v, err := ParseDataOpcional("x", nil); v != nil || err != nil {
		t.Fatalf("expected nil, nil")
	}
}

func TestConferirToken(t *testing.T) {
	hash, err := HashToken("segredo")
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	if !ConferirToken(hash, "segredo") {
		t.Fatalf("expected token to match")
	}
	if ConferirToken(hash, "outro") || ConferirToken("", "segredo") {
		t.Fatalf("unexpected match")
	}
}

func TestSomarMeses(t *testing.T) {
	cases := []struct {
		base string
		n    int
		want string
	}{
		{"2024-01-15", 1, "2024-02-15"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-11-30", 3, "2025-02-28"},
		{"2024-03-31", 0, "2024-03-31"},
	}
	for _, c := range cases {
		base, _ := time.Parse("2006-01-02", c.base)
		if got := SomarMeses(base, c.n).Format("2006-01-02"); got != c.want {
			t.Fatalf("SomarMeses(%s, %d) = %s, want %s", c.base, c.n, got, c.want)
		}
	}
}

func TestDiasEntre(t *testing.T) {
	a := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 5, 11, 1, 0, 0, 0, time.UTC)
	if got := DiasEntre(a, b); got != 10 {
		t.Fatalf("DiasEntre = %d, want 10", got)
	}
	if got := DiasEntre(b, a); got != -10 {
		t.Fatalf("DiasEntre reversed = %d, want -10", got)
	}
}
