package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/acordo"
	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/comentario"
	"github.com/CamaraFiscal/api-conciliacao/internal/config"
	"github.com/CamaraFiscal/api-conciliacao/internal/contribuinte"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/notificacao"
	"github.com/CamaraFiscal/api-conciliacao/internal/pauta"
	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"github.com/CamaraFiscal/api-conciliacao/internal/router"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	dbutil "github.com/CamaraFiscal/api-conciliacao/internal/utils/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	var semMigrar bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Sobe a API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := carregar()
			if err != nil {
				return err
			}
			if err := cfg.ExigirServidor(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := dbutil.ConnectDataBase(ctx, cfg.DSN(), cfg.DBMaxConns)
			if err != nil {
				return err
			}
			if !semMigrar {
				if err := migrar(db); err != nil {
					return err
				}
			}

			handler := router.New(router.Deps{
				DB:            db,
				Verificador:   auth.NewVerificador(cfg.JWTSecret, cfg.JWTIssuer),
				CronTokenHash: cfg.CronTokenHash,
				CORSOrigins:   cfg.CORSOrigins,
				Acordos:       novoServicoAcordos(db, cfg),
				Pautas:        pauta.NewServico(db),
			})
			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			erro := make(chan error, 1)
			go func() {
				slog.Info("servidor iniciado", "operation", "http.serve", "outcome", "start", "addr", cfg.HTTPAddr)
				erro <- srv.ListenAndServe()
			}()

			select {
			case err := <-erro:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("servidor http: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			slog.Info("encerrando servidor", "operation", "http.shutdown", "outcome", "start")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&semMigrar, "sem-migrar", false, "não executa o AutoMigrate ao subir")
	return cmd
}

func migrarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrar",
		Short: "Cria ou atualiza as tabelas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := carregar()
			if err != nil {
				return err
			}
			db, err := dbutil.ConnectDataBase(cmd.Context(), cfg.DSN(), cfg.DBMaxConns)
			if err != nil {
				return err
			}
			if err := migrar(db); err != nil {
				return err
			}
			slog.Info("migração concluída", "operation", "db.migrar", "outcome", "success")
			return nil
		},
	}
}

// vencidasCmd roda a rotina de vencidas sem passar pela API, para agendadores
// locais.
func vencidasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "atualizar-vencidas",
		Short: "Marca parcelas em atraso e acordos vencidos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := carregar()
			if err != nil {
				return err
			}
			db, err := dbutil.ConnectDataBase(cmd.Context(), cfg.DSN(), cfg.DBMaxConns)
			if err != nil {
				return err
			}
			res, err := novoServicoAcordos(db, cfg).AtualizarVencidas(cmd.Context(), nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "parcelas atrasadas: %d\nparcelas regularizadas: %d\nacordos vencidos: %d\n",
				res.ParcelasAtrasadas, res.ParcelasRegularizadas, res.AcordosVencidos)
			return nil
		},
	}
}

func hashTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Gera o hash bcrypt para CRON_TOKEN_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HashToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func migrar(db *gorm.DB) error {
	etapas := []struct {
		nome string
		fn   func(*gorm.DB) error
	}{
		{"contribuintes", contribuinte.Migrate},
		{"processos", processo.Migrate},
		{"historico", historico.Migrate},
		{"comentarios", comentario.Migrate},
		{"pautas", pauta.Migrate},
		{"acordos", acordo.Migrate},
	}
	for _, e := range etapas {
		if err := e.fn(db); err != nil {
			return fmt.Errorf("migrar %s: %w", e.nome, err)
		}
	}
	return nil
}

// politica aplica os status configurados para o cumprimento por origem.
func politica(cfg *config.Config) acordo.Politica {
	pol := acordo.PoliticaPadrao()
	pol[acordo.OrigemPagamento] = processo.Status(cfg.StatusPagamento)
	pol[acordo.OrigemParcela] = processo.Status(cfg.StatusParcela)
	pol[acordo.OrigemDetalhes] = processo.Status(cfg.StatusDetalhes)
	return pol
}

func novoServicoAcordos(db *gorm.DB, cfg *config.Config) *acordo.Servico {
	return acordo.NewServico(db, politica(cfg), cfg.DiasTolerancia, notificacao.NewWebhook(cfg.WebhookURL))
}
