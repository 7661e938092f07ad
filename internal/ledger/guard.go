// Package ledger contém a regra de edição de transações em meses fechados.
package ledger

import "time"

// CanEdit permite editar apenas transações do mês corrente. As datas são
// comparadas em UTC, o mesmo fuso usado para fechar o mês.
func CanEdit(txDate, now time.Time) bool {
	tx := txDate.UTC()
	n := now.UTC()
	return tx.Year() == n.Year() && tx.Month() == n.Month()
}

// MonthClosed é o inverso de CanEdit, para mensagens da interface.
func MonthClosed(txDate, now time.Time) bool {
	return !CanEdit(txDate, now)
}
