// Package phone приводит введённые пользователем номера к адресу транспорта.
package phone

import "strings"

const (
	CountryPrefix = "62"
	AddressSuffix = "@c.us"
)

// Normalize оставляет только цифры, подставляет код страны и добавляет суффикс.
// Функция тотальная: для мусора на входе вернёт мусорный адрес, валидация на вызывающем.
func Normalize(raw string) string {
	digits := stripNonDigits(raw)
	if !strings.HasPrefix(digits, CountryPrefix) {
		digits = CountryPrefix + strings.TrimPrefix(digits, "0")
	}
	return digits + AddressSuffix
}

// Address строит адрес из уже международного номера, без подстановки кода страны
func Address(international string) string {
	return stripNonDigits(international) + AddressSuffix
}

// Digits возвращает номер без суффикса адреса
func Digits(address string) string {
	return strings.TrimSuffix(address, AddressSuffix)
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
