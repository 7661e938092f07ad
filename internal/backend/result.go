// Package backend é a fronteira com o serviço de dados (perfil, campanhas).
//
// Toda chamada devolve um Result: quem chama decide o valor de fallback com
// OrElse em vez de depender de erros engolidos em cada ponto.
package backend

import (
	"errors"
	"fmt"

	"github.com/willjrcristo/moneyquest-api/internal/repository"
)

// ErrorKind classifica a falha de uma chamada ao backend.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// Falha de rede/banco: recuperada com valor padrão, nunca propagada para a UI.
	KindNetwork
	// Registro ausente.
	KindNotFound
	// Recurso opcional não configurado: "nada a mostrar", não é erro.
	KindNotConfigured
	// Entrada inválida do chamador.
	KindInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindNotConfigured:
		return "not_configured"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Result[T any] struct {
	Value T
	Kind  ErrorKind
	Err   error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Fail[T any](kind ErrorKind, err error) Result[T] {
	return Result[T]{Kind: kind, Err: err}
}

func (r Result[T]) OK() bool { return r.Kind == KindNone }

// OrElse devolve o valor em caso de sucesso, senão o fallback informado.
func (r Result[T]) OrElse(fallback T) T {
	if r.OK() {
		return r.Value
	}
	return fallback
}

// Unwrap converte para o par (valor, erro) usual.
func (r Result[T]) Unwrap() (T, error) {
	var zero T
	switch {
	case r.OK():
		return r.Value, nil
	case r.Err == nil:
		return zero, errors.New(r.Kind.String())
	default:
		return zero, r.Err
	}
}

// classify traduz erros de repositório em ErrorKind.
func classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	default:
		return KindNetwork
	}
}
