package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/CamaraFiscal/api-conciliacao/internal/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "conciliacao",
		Short:         "API da Câmara de Conciliação Fiscal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrarCmd())
	rootCmd.AddCommand(vencidasCmd())
	rootCmd.AddCommand(hashTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// carregar lê a configuração e instala o logger JSON padrão.
func carregar() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger.With("service", "api-conciliacao"))
	return cfg, nil
}
