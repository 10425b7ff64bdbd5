package router

import (
	"context"
	"net/http"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/metricas"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-Id"

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), utils.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recuperar(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				utils.Logger("http").ErrorContext(r.Context(), "panic recuperado",
					"operation", "http.panic",
					"outcome", "failure",
					"request_id", utils.RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
				)
				utils.EscreverJSON(w, http.StatusInternalServerError, map[string]string{"error": "Erro interno do servidor"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// registrar loga cada requisição e alimenta as métricas HTTP pelo template
// da rota, para não explodir a cardinalidade com ids.
func registrar(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inicio := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		rota := "desconhecida"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				rota = tpl
			}
		}
		d := time.Since(inicio)
		metricas.ObservarRequisicao(r.Method, rota, status, d)

		outcome := "success"
		if status >= 400 {
			outcome = "failure"
		}
		fields := []any{
			"operation", "http.request",
			"outcome", outcome,
			"method", r.Method,
			"route", rota,
			"path", r.URL.Path,
			"status_code", status,
			"bytes", rec.bytes,
			"duration_ms", d.Milliseconds(),
			"request_id", utils.RequestID(r.Context()),
		}
		log := utils.Logger("http")
		switch {
		case status >= 500:
			log.ErrorContext(r.Context(), "requisição concluída", fields...)
		case status >= 400:
			log.WarnContext(r.Context(), "requisição concluída", fields...)
		default:
			log.InfoContext(r.Context(), "requisição concluída", fields...)
		}
	})
}

func naoEncontrada(w http.ResponseWriter, r *http.Request) {
	utils.EscreverErro(w, r, "http.rota", erros.NaoEncontradoErr("Rota não encontrada"))
}
