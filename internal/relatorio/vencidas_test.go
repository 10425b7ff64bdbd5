package relatorio

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func exemplo() *Vencidas {
	v := &Vencidas{GeradoEm: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	v.Adicionar(ItemVencido{
		NumeroProcesso: "CCF-001",
		Contribuinte:   "João da Conceição",
		NumeroParcela:  2,
		DataVencimento: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Valor:          decimal.RequireFromString("500.00"),
		Pago:           decimal.RequireFromString("100.00"),
		Saldo:          decimal.RequireFromString("400.00"),
		DiasAtraso:     31,
	})
	v.Adicionar(ItemVencido{
		NumeroProcesso: "CCF-002",
		Valor:          decimal.RequireFromString("250.00"),
		Pago:           decimal.Zero,
		Saldo:          decimal.RequireFromString("250.00"),
	})
	return v
}

func TestTotais(t *testing.T) {
	v := exemplo()
	if v.Quantidade != 2 || !v.TotalSaldo.Equal(decimal.RequireFromString("650")) || !v.TotalPago.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("unexpected totals: %+v", v)
	}
}

func TestXLSX(t *testing.T) {
	b, err := XLSX(exemplo())
	if err != nil {
		t.Fatalf("XLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	got, err := f.GetCellValue("parcelas", "A2")
	if err != nil || got != "CCF-001" {
		t.Fatalf("expected CCF-001 in A2, got %q (%v)", got, err)
	}
	got, _ = f.GetCellValue("resumo", "B4")
	if got != "2" {
		t.Fatalf("expected quantidade 2, got %q", got)
	}
}

func TestPDF(t *testing.T) {
	b, err := PDF(exemplo())
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}
