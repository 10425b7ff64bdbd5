// Package notificacao envia eventos do ciclo de acordos para um webhook externo.
package notificacao

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/metricas"
)

const EventoAcordoCumprido = "acordo.cumprido"

// Evento é o corpo enviado ao webhook.
type Evento struct {
	Evento         string    `json:"evento"`
	AcordoID       uint      `json:"acordoId"`
	ProcessoID     uint      `json:"processoId"`
	NumeroProcesso string    `json:"numeroProcesso"`
	StatusProcesso string    `json:"statusProcesso,omitempty"`
	OcorridoEm     time.Time `json:"ocorridoEm"`
}

// Webhook publica eventos via POST JSON. URL vazia desativa o envio.
type Webhook struct {
	URL    string
	Client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (w *Webhook) Enviar(ctx context.Context, ev Evento) error {
	if w == nil || w.URL == "" {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("montar requisição do webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		metricas.Webhook(err)
		return fmt.Errorf("enviar webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		err = fmt.Errorf("webhook respondeu %d", resp.StatusCode)
	}
	metricas.Webhook(err)
	return err
}
