// Package metricas registra os coletores Prometheus da API.
package metricas

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const prefixo = "conciliacao_"

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	pagamentosTotal   *prometheus.CounterVec
	valorPagoTotal    prometheus.Counter
	acordosCumpridos  *prometheus.CounterVec
	acordosCancelados prometheus.Counter
	acordosCriados    *prometheus.CounterVec

	vencidasParcelas *prometheus.CounterVec
	vencidasLatency  prometheus.Histogram

	relatorioExport *prometheus.CounterVec
	webhookEnvios   *prometheus.CounterVec
)

// Init registra os coletores no registry padrão. Chamadas repetidas são ignoradas.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefixo + "http_requests_total",
				Help: "Total de requisições HTTP por rota e status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefixo + "http_request_duration_seconds",
				Help:    "Duração das requisições HTTP em segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)

		pagamentosTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefixo + "pagamentos_total",
				Help: "Pagamentos de parcela registrados por origem e forma",
			},
			[]string{"origem", "forma"},
		)
		valorPagoTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: prefixo + "valor_pago_reais_total",
				Help: "Soma dos valores pagos em parcelas",
			},
		)
		acordosCumpridos = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefixo + "acordos_cumpridos_total",
				Help: "Acordos cumpridos por origem do evento",
			},
			[]string{"origem"},
		)
		acordosCancelados = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: prefixo + "acordos_cancelados_total",
				Help: "Acordos cancelados",
			},
		)
		acordosCriados = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefixo + "acordos_criados_total",
				Help: "Acordos firmados por tipo de processo",
			},
			[]string{"tipo"},
		)

		vencidasParcelas = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefixo + "vencidas_parcelas_total",
				Help: "Parcelas e acordos alterados pela rotina de vencidas",
			},
			[]string{"resultado"},
		)
		vencidasLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    prefixo + "vencidas_duration_seconds",
				Help:    "Duração da rotina de vencidas",
				Buckets: prometheus.DefBuckets,
			},
		)

		relatorioExport = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefixo + "relatorio_export_total",
				Help: "Exportações do relatório de vencidas por formato e resultado",
			},
			[]string{"formato", "resultado"},
		)
		webhookEnvios = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefixo + "webhook_envios_total",
				Help: "Notificações enviadas por resultado",
			},
			[]string{"resultado"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			pagamentosTotal,
			valorPagoTotal,
			acordosCumpridos,
			acordosCancelados,
			acordosCriados,
			vencidasParcelas,
			vencidasLatency,
			relatorioExport,
			webhookEnvios,
		)
	})
}

func ObservarRequisicao(method, route string, status int, d time.Duration) {
	Init()
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Pagamento contabiliza um pagamento; valor em reais.
func Pagamento(origem, forma string, valor float64) {
	Init()
	pagamentosTotal.WithLabelValues(origem, forma).Inc()
	if valor > 0 {
		valorPagoTotal.Add(valor)
	}
}

func AcordoCumprido(origem string) {
	Init()
	acordosCumpridos.WithLabelValues(origem).Inc()
}

func AcordoCancelado() {
	Init()
	acordosCancelados.Inc()
}

func AcordoCriado(tipo string) {
	Init()
	acordosCriados.WithLabelValues(tipo).Inc()
}

// Vencidas registra o resultado de uma execução da rotina.
func Vencidas(atrasadas, regularizadas, acordosVencidos int, d time.Duration) {
	Init()
	vencidasParcelas.WithLabelValues("atrasada").Add(float64(atrasadas))
	vencidasParcelas.WithLabelValues("regularizada").Add(float64(regularizadas))
	vencidasParcelas.WithLabelValues("acordo_vencido").Add(float64(acordosVencidos))
	vencidasLatency.Observe(d.Seconds())
}

func Exportacao(formato string, err error) {
	Init()
	resultado := "success"
	if err != nil {
		resultado = "error"
	}
	relatorioExport.WithLabelValues(formato, resultado).Inc()
}

func Webhook(err error) {
	Init()
	resultado := "success"
	if err != nil {
		resultado = "error"
	}
	webhookEnvios.WithLabelValues(resultado).Inc()
}
