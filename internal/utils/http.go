package utils

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
)

type ctxKey string

const RequestIDKey ctxKey = "requestID"

// RequestID devolve o id da requisição guardado no contexto.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// Logger devolve o logger padrão com o módulo já anotado.
func Logger(module string) *slog.Logger {
	return slog.Default().With("module", module)
}

// EscreverJSON serializa v com o status informado.
func EscreverJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type corpoErro struct {
	Error  string            `json:"error"`
	Campos map[string]string `json:"campos,omitempty"`
}

// EscreverErro converte err no corpo {"error": ...} com o status da taxonomia.
// Erros internos são registrados e o cliente recebe mensagem genérica.
func EscreverErro(w http.ResponseWriter, r *http.Request, operacao string, err error) {
	status := erros.Status(err)
	corpo := corpoErro{Error: "Erro interno do servidor"}
	if e, ok := erros.Como(err); ok && e.Tipo != erros.Interno {
		corpo.Error = e.Mensagem
		corpo.Campos = e.Campos
	}

	fields := []any{
		"operation", operacao,
		"outcome", "failure",
		"status_code", status,
		"request_id", RequestID(r.Context()),
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), "operação falhou", fields...)
	} else {
		slog.Default().WarnContext(r.Context(), "operação falhou", fields...)
	}

	EscreverJSON(w, status, corpo)
}

// DecodificarJSON lê o corpo da requisição em dst.
func DecodificarJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return erros.Invalido("JSON mal formado")
	}
	return nil
}
