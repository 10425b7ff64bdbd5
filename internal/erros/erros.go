// Package erros define a taxonomia de erros da API e o mapeamento para HTTP.
package erros

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Tipo classifica um erro de negócio.
type Tipo int

const (
	Interno Tipo = iota
	Autenticacao
	Permissao
	NaoEncontrado
	Validacao
	EstadoInvalido
)

func (t Tipo) String() string {
	switch t {
	case Autenticacao:
		return "autenticacao"
	case Permissao:
		return "permissao"
	case NaoEncontrado:
		return "nao_encontrado"
	case Validacao:
		return "validacao"
	case EstadoInvalido:
		return "estado_invalido"
	default:
		return "interno"
	}
}

// Erro carrega o tipo, a mensagem exibida ao cliente e detalhes por campo.
type Erro struct {
	Tipo     Tipo
	Mensagem string
	Campos   map[string]string
	Causa    error
}

func (e *Erro) Error() string {
	if e.Causa != nil {
		return fmt.Sprintf("%s: %s: %v", e.Tipo, e.Mensagem, e.Causa)
	}
	return fmt.Sprintf("%s: %s", e.Tipo, e.Mensagem)
}

func (e *Erro) Unwrap() error { return e.Causa }

// ComCampo devolve o próprio erro com o detalhe adicionado.
func (e *Erro) ComCampo(campo, detalhe string) *Erro {
	if e.Campos == nil {
		e.Campos = map[string]string{}
	}
	e.Campos[campo] = detalhe
	return e
}

func novo(t Tipo, format string, args ...any) *Erro {
	return &Erro{Tipo: t, Mensagem: fmt.Sprintf(format, args...)}
}

func NaoAutenticado(format string, args ...any) *Erro {
	return novo(Autenticacao, format, args...)
}

func SemPermissao(format string, args ...any) *Erro {
	return novo(Permissao, format, args...)
}

func NaoEncontradoErr(format string, args ...any) *Erro {
	return novo(NaoEncontrado, format, args...)
}

func Invalido(format string, args ...any) *Erro {
	return novo(Validacao, format, args...)
}

func EstadoInvalidoErr(format string, args ...any) *Erro {
	return novo(EstadoInvalido, format, args...)
}

// InternoErr envolve uma falha inesperada. A causa não é exposta ao cliente.
func InternoErr(causa error, format string, args ...any) *Erro {
	e := novo(Interno, format, args...)
	e.Causa = causa
	return e
}

// Como extrai o *Erro da cadeia, se houver.
func Como(err error) (*Erro, bool) {
	var e *Erro
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// DoTipo informa se err (ou algum erro embrulhado) é do tipo t.
func DoTipo(err error, t Tipo) bool {
	e, ok := Como(err)
	return ok && e.Tipo == t
}

// Status devolve o código HTTP correspondente ao erro.
func Status(err error) int {
	e, ok := Como(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Tipo {
	case Autenticacao:
		return http.StatusUnauthorized
	case Permissao:
		return http.StatusForbidden
	case NaoEncontrado:
		return http.StatusNotFound
	case Validacao, EstadoInvalido:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DeBusca traduz gorm.ErrRecordNotFound em NaoEncontrado e o resto em Interno.
func DeBusca(err error, entidade string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NaoEncontradoErr("%s não encontrado(a)", entidade)
	}
	if _, ok := Como(err); ok {
		return err
	}
	return InternoErr(err, "erro ao buscar %s", entidade)
}
