// Package router monta as rotas HTTP da API.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/acordo"
	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/comentario"
	"github.com/CamaraFiscal/api-conciliacao/internal/contribuinte"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/metricas"
	"github.com/CamaraFiscal/api-conciliacao/internal/pauta"
	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// Deps reúne o que as rotas precisam.
type Deps struct {
	DB            *gorm.DB
	Verificador   *auth.Verificador
	CronTokenHash string
	CORSOrigins   []string
	Acordos       *acordo.Servico
	Pautas        *pauta.Servico
}

func New(d Deps) http.Handler {
	metricas.Init()

	hist := historico.NewRepository(d.DB)
	contribuintes := contribuinte.NewHandler(contribuinte.NewRepository(d.DB), hist)
	processos := processo.NewHandler(processo.NewRepository(d.DB), hist)
	pautas := pauta.NewHandler(d.Pautas)
	acordos := acordo.NewHandler(d.Acordos)
	historicos := historico.NewHandler(hist)
	comentarios := comentario.NewHandler(comentario.NewRepository(d.DB))

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(naoEncontrada)
	r.Use(recuperar, requestID, registrar)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", saude(d.DB)).Methods(http.MethodGet)

	// aceita sessão ADMIN ou o token do agendador
	r.Handle("/api/acordos/status",
		d.Verificador.AutenticarOuCron(d.CronTokenHash)(http.HandlerFunc(acordos.Status)),
	).Methods(http.MethodGet, http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(d.Verificador.Autenticar)

	rota := func(path string, papeis []auth.Papel, h http.HandlerFunc, methods ...string) {
		api.Handle(path, auth.Exigir(papeis...)(h)).Methods(methods...)
	}

	// Contribuintes
	rota("/contribuintes", auth.Escrita, contribuintes.Criar, http.MethodPost)
	rota("/contribuintes", auth.Leitura, contribuintes.Listar, http.MethodGet)
	rota("/contribuintes/{id:[0-9]+}", auth.Leitura, contribuintes.BuscarPorID, http.MethodGet)

	// Processos
	rota("/processos", auth.Escrita, processos.Criar, http.MethodPost)
	rota("/processos", auth.Leitura, processos.Listar, http.MethodGet)
	rota("/processos/{id:[0-9]+}", auth.Leitura, processos.BuscarPorID, http.MethodGet)
	rota("/processos/{id:[0-9]+}", auth.Escrita, processos.Atualizar, http.MethodPut)
	rota("/processos/{id:[0-9]+}", auth.SomenteAdmin, processos.Deletar, http.MethodDelete)
	rota("/processos/{id:[0-9]+}/status", auth.Escrita, processos.AlterarStatus, http.MethodPatch)
	rota("/processos/{id:[0-9]+}/historico", auth.Leitura, historicos.ListarPorProcesso, http.MethodGet)
	rota("/processos/{id:[0-9]+}/decisoes", auth.Leitura, pautas.DecisoesDoProcesso, http.MethodGet)
	rota("/processos/{id:[0-9]+}/acordos", auth.Leitura, acordos.DoProcesso, http.MethodGet)
	rota("/processos/{id:[0-9]+}/comentarios", auth.Escrita, comentarios.Criar, http.MethodPost)
	rota("/processos/{id:[0-9]+}/comentarios", auth.Leitura, comentarios.ListarPorProcesso, http.MethodGet)
	rota("/comentarios/{id:[0-9]+}", auth.Escrita, comentarios.Atualizar, http.MethodPut)
	rota("/comentarios/{id:[0-9]+}", auth.Escrita, comentarios.Remover, http.MethodDelete)

	// Pautas e sessões
	rota("/pautas", auth.Escrita, pautas.Criar, http.MethodPost)
	rota("/pautas", auth.Leitura, pautas.Listar, http.MethodGet)
	rota("/pautas/{id:[0-9]+}", auth.Leitura, pautas.BuscarPorID, http.MethodGet)
	rota("/pautas/{id:[0-9]+}/processos", auth.Escrita, pautas.IncluirProcesso, http.MethodPost)
	rota("/pautas/{id:[0-9]+}/processos/{processoId:[0-9]+}", auth.Escrita, pautas.RemoverProcesso, http.MethodDelete)
	rota("/pautas/{id:[0-9]+}/ordem", auth.Escrita, pautas.Reordenar, http.MethodPut)
	rota("/pautas/{id:[0-9]+}/sessao", auth.Escrita, pautas.AbrirSessao, http.MethodPost)
	rota("/sessoes/{id:[0-9]+}", auth.Leitura, pautas.BuscarSessao, http.MethodGet)
	rota("/sessoes/{id:[0-9]+}/decisoes", auth.Escrita, pautas.RegistrarDecisao, http.MethodPost)
	rota("/sessoes/{id:[0-9]+}/encerrar", auth.Escrita, pautas.EncerrarSessao, http.MethodPatch)

	// Acordos, parcelas e pagamentos
	rota("/acordos", auth.Escrita, acordos.Criar, http.MethodPost)
	rota("/acordos/{id:[0-9]+}", auth.Leitura, acordos.BuscarPorID, http.MethodGet)
	rota("/acordos/{id:[0-9]+}/concluir", auth.Escrita, acordos.Concluir, http.MethodPatch)
	rota("/acordos/{id:[0-9]+}/detalhes", auth.Escrita, acordos.AtualizarDetalhe, http.MethodPatch)
	rota("/acordos/{id:[0-9]+}/custas", auth.Escrita, acordos.RegistrarCustas, http.MethodPatch)
	rota("/acordos/{id:[0-9]+}/cancelar", auth.SomenteAdmin, acordos.Cancelar, http.MethodPatch)
	rota("/pagamentos", auth.Escrita, acordos.RegistrarPagamento, http.MethodPost)
	rota("/parcelas/{id:[0-9]+}", auth.Leitura, acordos.BuscarParcela, http.MethodGet)
	rota("/parcelas/{id:[0-9]+}", auth.Escrita, acordos.AtualizarParcela, http.MethodPut)
	rota("/parcelas/{id:[0-9]+}/pagamento", auth.Escrita, acordos.PagarParcela, http.MethodPost)

	rota("/auditoria", auth.SomenteAdmin, historicos.ListarAuditoria, http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", auth.CronHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func saude(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			utils.Logger("http").WarnContext(r.Context(), "healthcheck falhou", "operation", "http.healthz",
				"outcome", "failure", "error", err.Error())
			utils.EscreverJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "indisponivel"})
			return
		}
		utils.EscreverJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
