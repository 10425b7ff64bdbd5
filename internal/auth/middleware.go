package auth

import (
	"net/http"
	"strings"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
)

// Autenticar exige um Bearer token válido e injeta o usuário no contexto.
func (v *Verificador) Autenticar(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			utils.EscreverErro(w, r, "auth.autenticar", erros.NaoAutenticado("Token ausente"))
			return
		}
		u, err := v.Validar(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			e := erros.NaoAutenticado("Token inválido")
			e.Causa = err
			utils.EscreverErro(w, r, "auth.autenticar", e)
			return
		}
		next.ServeHTTP(w, r.WithContext(ComUsuario(r.Context(), u)))
	})
}

// Exigir aplica Autorizar antes do handler.
func Exigir(papeis ...Papel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := Autorizar(UsuarioDoContexto(r.Context()), papeis...); err != nil {
				utils.EscreverErro(w, r, "auth.autorizar", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CronHeader carrega o token do agendador externo.
const CronHeader = "X-Cron-Token"

// UsuarioCron assina as chamadas autenticadas por X-Cron-Token.
var UsuarioCron = Usuario{ID: "cron", Nome: "Agendador", Papel: PapelAdmin}

// AutenticarOuCron aceita X-Cron-Token conferido contra o hash bcrypt
// configurado; sem o header, exige Bearer token como Autenticar.
func (v *Verificador) AutenticarOuCron(cronHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		bearer := v.Autenticar(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(CronHeader)
			if token == "" {
				bearer.ServeHTTP(w, r)
				return
			}
			if !utils.ConferirToken(cronHash, token) {
				utils.EscreverErro(w, r, "auth.cron", erros.NaoAutenticado("Token do agendador inválido"))
				return
			}
			u := UsuarioCron
			next.ServeHTTP(w, r.WithContext(ComUsuario(r.Context(), &u)))
		})
	}
}
