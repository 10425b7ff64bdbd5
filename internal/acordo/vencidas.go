package acordo

import (
	"context"
	"fmt"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/metricas"
	"github.com/CamaraFiscal/api-conciliacao/internal/relatorio"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	dbutil "github.com/CamaraFiscal/api-conciliacao/internal/utils/db"
	"gorm.io/gorm"
)

// ResumoVencidas conta o que uma execução da rotina alterou.
type ResumoVencidas struct {
	ParcelasAtrasadas     int       `json:"parcelasAtrasadas"`
	ParcelasRegularizadas int       `json:"parcelasRegularizadas"`
	AcordosVencidos       int       `json:"acordosVencidos"`
	ExecutadoEm           time.Time `json:"executadoEm"`
}

// AtualizarVencidas reavalia o vencimento das parcelas abertas de acordos
// ativos. Rodar de novo no mesmo dia não altera nada.
// u pode ser nil quando a rotina é disparada pelo cron.
func (s *Servico) AtualizarVencidas(ctx context.Context, u *auth.Usuario) (*ResumoVencidas, error) {
	if u == nil {
		u = sistema
	}
	inicio := time.Now()
	hoje := s.Agora()
	res := &ResumoVencidas{ExecutadoEm: hoje}

	err := dbutil.EmTransacao(ctx, s.DB, "erro ao atualizar parcelas vencidas", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		acordos, err := repo.AtivosComParcelasAbertas()
		if err != nil {
			return err
		}
		hist := historico.NewRepository(tx)
		var atrasar, regularizar []uint
		for i := range acordos {
			a := &acordos[i]
			maiorAtraso := 0
			for _, p := range a.Parcelas {
				atraso := utils.DiasEntre(p.DataVencimento, hoje)
				switch {
				case p.Status == ParcelaPendente && atraso > 0:
					atrasar = append(atrasar, p.ID)
				case p.Status == ParcelaAtrasada && atraso <= 0:
					regularizar = append(regularizar, p.ID)
				}
				if atraso > maiorAtraso {
					maiorAtraso = atraso
				}
			}

			if s.DiasTolerancia <= 0 || maiorAtraso <= s.DiasTolerancia {
				continue
			}
			a.Status = AcordoVencido
			if err := repo.UpdateAcordo(a); err != nil {
				return err
			}
			if err := hist.Registrar(u, &historico.HistoricoProcesso{
				ProcessoID: a.ProcessoID,
				Tipo:       historico.EventoAcordo,
				Titulo:     "Acordo vencido",
				Descricao:  fmt.Sprintf("Parcela em atraso há %d dias (tolerância de %d dias)", maiorAtraso, s.DiasTolerancia),
			}); err != nil {
				return err
			}
			if err := hist.Auditar(u, historico.AcaoAtualizar, "Acordo", a.ID,
				map[string]any{"status": AcordoAtivo}, map[string]any{"status": AcordoVencido}); err != nil {
				return err
			}
			res.AcordosVencidos++
		}
		if err := repo.UpdateStatusParcelas(atrasar, ParcelaAtrasada); err != nil {
			return err
		}
		if err := repo.UpdateStatusParcelas(regularizar, ParcelaPendente); err != nil {
			return err
		}
		res.ParcelasAtrasadas = len(atrasar)
		res.ParcelasRegularizadas = len(regularizar)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metricas.Vencidas(res.ParcelasAtrasadas, res.ParcelasRegularizadas, res.AcordosVencidos, time.Since(inicio))
	s.log.InfoContext(ctx, "rotina de vencidas executada", "operation", "acordo.vencidas", "outcome", "success",
		"parcelas_atrasadas", res.ParcelasAtrasadas,
		"parcelas_regularizadas", res.ParcelasRegularizadas,
		"acordos_vencidos", res.AcordosVencidos,
		"usuario_id", u.ID)
	return res, nil
}

// RelatorioVencidas lista as parcelas não pagas de acordos ativos com
// vencimento anterior a hoje.
func (s *Servico) RelatorioVencidas(ctx context.Context) (*relatorio.Vencidas, error) {
	hoje := s.Agora()
	acordos, err := NewRepository(s.DB.WithContext(ctx)).AtivosComParcelasAbertas()
	if err != nil {
		return nil, erros.InternoErr(err, "erro ao montar relatório de vencidas")
	}
	rel := &relatorio.Vencidas{GeradoEm: hoje, Itens: []relatorio.ItemVencido{}}
	for _, a := range acordos {
		for _, p := range a.Parcelas {
			atraso := utils.DiasEntre(p.DataVencimento, hoje)
			if atraso <= 0 {
				continue
			}
			pago := TotalPago(p.Pagamentos)
			rel.Adicionar(relatorio.ItemVencido{
				AcordoID:       a.ID,
				ParcelaID:      p.ID,
				NumeroProcesso: a.Processo.Numero,
				Contribuinte:   a.Processo.Contribuinte.Nome,
				Documento:      a.Processo.Contribuinte.Documento,
				NumeroParcela:  p.Numero,
				DataVencimento: p.DataVencimento,
				Valor:          p.Valor,
				Pago:           pago,
				Saldo:          p.Valor.Sub(pago),
				DiasAtraso:     atraso,
				Status:         string(p.Status),
			})
		}
	}
	return rel, nil
}
