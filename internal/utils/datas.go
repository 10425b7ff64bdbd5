package utils

import (
	"strings"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
)

// ParseData aceita "2006-01-02" ou RFC3339.
func ParseData(campo, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, erros.Invalido("O campo '%s' é obrigatório", campo).ComCampo(campo, "obrigatório")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, erros.Invalido("Data inválida em '%s'", campo).ComCampo(campo, "use AAAA-MM-DD")
	}
	return t, nil
}

// ParseDataOpcional devolve nil quando s é vazio.
func ParseDataOpcional(campo string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseData(campo, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InicioDoDia zera o horário preservando o fuso.
func InicioDoDia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SomarMeses avança n meses mantendo o dia, limitado ao último dia do mês
// (31/01 + 1 mês = 29/02 em ano bissexto).
func SomarMeses(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	alvo := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	ultimo := alvo.AddDate(0, 1, -1).Day()
	if d > ultimo {
		d = ultimo
	}
	return alvo.AddDate(0, 0, d-1)
}

// DiasEntre conta os dias corridos de a até b, ignorando o horário.
func DiasEntre(a, b time.Time) int {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	ua := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
