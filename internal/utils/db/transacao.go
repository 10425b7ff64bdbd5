package db

import (
	"context"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"gorm.io/gorm"
)

// EmTransacao executa fn numa transação do contexto da requisição.
// Qualquer erro desfaz todas as escritas; erros fora da taxonomia
// são devolvidos como Interno com a mensagem msg.
func EmTransacao(ctx context.Context, database *gorm.DB, msg string, fn func(tx *gorm.DB) error) error {
	err := database.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if _, ok := erros.Como(err); ok {
		return err
	}
	return erros.InternoErr(err, "%s", msg)
}
