// Package relatorio monta e exporta o relatório de parcelas vencidas.
package relatorio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ItemVencido é uma parcela não paga de acordo ativo com vencimento passado.
type ItemVencido struct {
	AcordoID       uint            `json:"acordoId"`
	ParcelaID      uint            `json:"parcelaId"`
	NumeroProcesso string          `json:"numeroProcesso"`
	Contribuinte   string          `json:"contribuinte"`
	Documento      string          `json:"documento"`
	NumeroParcela  int             `json:"numeroParcela"`
	DataVencimento time.Time       `json:"dataVencimento"`
	Valor          decimal.Decimal `json:"valor"`
	Pago           decimal.Decimal `json:"pago"`
	Saldo          decimal.Decimal `json:"saldo"`
	DiasAtraso     int             `json:"diasAtraso"`
	Status         string          `json:"status"`
}

type Vencidas struct {
	GeradoEm   time.Time       `json:"geradoEm"`
	Quantidade int             `json:"quantidade"`
	TotalValor decimal.Decimal `json:"totalValor"`
	TotalPago  decimal.Decimal `json:"totalPago"`
	TotalSaldo decimal.Decimal `json:"totalSaldo"`
	Itens      []ItemVencido   `json:"itens"`
}

// Adicionar inclui o item e atualiza os totais.
func (v *Vencidas) Adicionar(it ItemVencido) {
	v.Itens = append(v.Itens, it)
	v.Quantidade = len(v.Itens)
	v.TotalValor = v.TotalValor.Add(it.Valor)
	v.TotalPago = v.TotalPago.Add(it.Pago)
	v.TotalSaldo = v.TotalSaldo.Add(it.Saldo)
}

var colunas = []string{"Processo", "Contribuinte", "Documento", "Parcela", "Vencimento", "Valor", "Pago", "Saldo", "Dias em atraso"}

// XLSX gera a planilha com resumo e itens.
func XLSX(v *Vencidas) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	resumo := "resumo"
	itens := "parcelas"
	if err := f.SetSheetName("Sheet1", resumo); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itens); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(resumo, "A1", "Parcelas vencidas")
	_ = f.SetCellValue(resumo, "A3", "Gerado em")
	_ = f.SetCellValue(resumo, "B3", v.GeradoEm.Format("02/01/2006 15:04"))
	_ = f.SetCellValue(resumo, "A4", "Quantidade")
	_ = f.SetCellValue(resumo, "B4", v.Quantidade)
	_ = f.SetCellValue(resumo, "A5", "Total das parcelas")
	_ = f.SetCellValue(resumo, "B5", v.TotalValor.InexactFloat64())
	_ = f.SetCellValue(resumo, "A6", "Total pago")
	_ = f.SetCellValue(resumo, "B6", v.TotalPago.InexactFloat64())
	_ = f.SetCellValue(resumo, "A7", "Saldo em aberto")
	_ = f.SetCellValue(resumo, "B7", v.TotalSaldo.InexactFloat64())

	for i, c := range colunas {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(itens, cell, c)
	}
	for i, it := range v.Itens {
		row := i + 2
		_ = f.SetCellValue(itens, fmt.Sprintf("A%d", row), it.NumeroProcesso)
		_ = f.SetCellValue(itens, fmt.Sprintf("B%d", row), it.Contribuinte)
		_ = f.SetCellValue(itens, fmt.Sprintf("C%d", row), it.Documento)
		_ = f.SetCellValue(itens, fmt.Sprintf("D%d", row), it.NumeroParcela)
		_ = f.SetCellValue(itens, fmt.Sprintf("E%d", row), it.DataVencimento.Format("02/01/2006"))
		_ = f.SetCellValue(itens, fmt.Sprintf("F%d", row), it.Valor.InexactFloat64())
		_ = f.SetCellValue(itens, fmt.Sprintf("G%d", row), it.Pago.InexactFloat64())
		_ = f.SetCellValue(itens, fmt.Sprintf("H%d", row), it.Saldo.InexactFloat64())
		_ = f.SetCellValue(itens, fmt.Sprintf("I%d", row), it.DiasAtraso)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF gera o relatório em A4 paisagem.
func PDF(v *Vencidas) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, tr("Parcelas vencidas"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Gerado em: %s", v.GeradoEm.Format("02/01/2006 15:04"))))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Quantidade: %d   Saldo em aberto: R$ %s", v.Quantidade, v.TotalSaldo.StringFixed(2))))
	pdf.Ln(8)

	larguras := []float64{38, 62, 34, 16, 24, 26, 26, 26, 24}
	pdf.SetFont("Arial", "B", 9)
	for i, c := range colunas {
		pdf.CellFormat(larguras[i], 6, tr(c), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, it := range v.Itens {
		linha := []string{
			it.NumeroProcesso,
			it.Contribuinte,
			it.Documento,
			fmt.Sprint(it.NumeroParcela),
			it.DataVencimento.Format("02/01/2006"),
			it.Valor.StringFixed(2),
			it.Pago.StringFixed(2),
			it.Saldo.StringFixed(2),
			fmt.Sprint(it.DiasAtraso),
		}
		for i, c := range linha {
			align := "L"
			if i >= 3 {
				align = "R"
			}
			pdf.CellFormat(larguras[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(larguras[0]+larguras[1]+larguras[2]+larguras[3]+larguras[4], 6, "Totais", "1", 0, "R", false, 0, "")
	pdf.CellFormat(larguras[5], 6, v.TotalValor.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(larguras[6], 6, v.TotalPago.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(larguras[7], 6, v.TotalSaldo.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(larguras[8], 6, "", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
