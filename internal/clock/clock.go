// Package clock isola a leitura do horário atual para que regras com prazo
// (expiração de assinatura, trial, datas de campanha) sejam testáveis.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Func adapta uma função comum para a interface Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Real usa o relógio do sistema. Só deve ser criado em cmd/.
func Real() Clock { return Func(time.Now) }

// Fixed sempre devolve t. Usado nos testes.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
