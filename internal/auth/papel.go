package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
)

// Papel é o perfil do usuário carregado na sessão.
type Papel string

const (
	PapelAdmin        Papel = "ADMIN"
	PapelFuncionario  Papel = "FUNCIONARIO"
	PapelVisualizador Papel = "VISUALIZADOR"
)

var (
	// Escrita pode alterar processos, pautas e acordos.
	Escrita = []Papel{PapelAdmin, PapelFuncionario}
	// Leitura inclui todos os papéis.
	Leitura = []Papel{PapelAdmin, PapelFuncionario, PapelVisualizador}
	// SomenteAdmin restringe operações administrativas.
	SomenteAdmin = []Papel{PapelAdmin}
)

// NormalizarPapel aceita variações de caixa e rejeita papéis desconhecidos.
func NormalizarPapel(s string) (Papel, bool) {
	switch p := Papel(strings.ToUpper(strings.TrimSpace(s))); p {
	case PapelAdmin, PapelFuncionario, PapelVisualizador:
		return p, true
	}
	return "", false
}

// Usuario identifica quem executa a operação.
type Usuario struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Papel     Papel  `json:"papel"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// Autorizar é a única checagem de papel da aplicação: usada pelo middleware
// de rotas e pelos serviços de domínio.
func Autorizar(u *Usuario, permitidos ...Papel) error {
	if u == nil || u.ID == "" {
		return erros.NaoAutenticado("Não autenticado")
	}
	for _, p := range permitidos {
		if u.Papel == p {
			return nil
		}
	}
	return erros.SemPermissao("Sem permissão para esta operação")
}

type ctxKey string

const usuarioCtxKey ctxKey = "usuario"

// ComUsuario guarda o usuário no contexto.
func ComUsuario(ctx context.Context, u *Usuario) context.Context {
	return context.WithValue(ctx, usuarioCtxKey, u)
}

// UsuarioDoContexto devolve o usuário autenticado, se houver.
func UsuarioDoContexto(ctx context.Context) *Usuario {
	u, _ := ctx.Value(usuarioCtxKey).(*Usuario)
	return u
}

// UsuarioDaRequisicao devolve o usuário do contexto acrescido de IP e user agent.
func UsuarioDaRequisicao(r *http.Request) *Usuario {
	u := UsuarioDoContexto(r.Context())
	if u == nil {
		return nil
	}
	c := *u
	c.IP = ipDaRequisicao(r)
	c.UserAgent = r.UserAgent()
	return &c
}

func ipDaRequisicao(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
