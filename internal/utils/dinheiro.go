package utils

import (
	"github.com/shopspring/decimal"
)

// Centavos arredonda para duas casas decimais.
func Centavos(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// FormatarReais devolve "R$ 1234.56".
func FormatarReais(v decimal.Decimal) string {
	return "R$ " + v.StringFixed(2)
}

// Dividir reparte total em n parcelas iguais truncadas no centavo;
// a diferença fica na última.
func Dividir(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	base := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	out := make([]decimal.Decimal, n)
	soma := decimal.Zero
	for i := 0; i < n-1; i++ {
		out[i] = base
		soma = soma.Add(base)
	}
	out[n-1] = total.Sub(soma)
	return out
}
