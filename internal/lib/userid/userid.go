// Package userid выводит внутренний идентификатор пользователя из внешнего
// идентификатора провайдера аутентификации.
//
// Тот же алгоритм выполняется в браузере, поэтому реализация обязана
// совпадать с ним побайтно: 32-битный знаковый хэш h = h*31 + c по кодовым
// единицам UTF-16, модуль значения в hex, дополненный нулями до 8 символов,
// и раскладка по шаблону UUID. Хэш не стойкий к коллизиям ("Aa" и "BB"
// дают одинаковый результат), любое изменение функции теряет связь со
// всеми существующими записями.
package userid

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Derive возвращает внутренний идентификатор вида
// xxxxxxxx-xxxx-4xxx-axxx-xxxxxxxx0000 для внешнего идентификатора.
func Derive(externalID string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(externalID)) {
		h = (h << 5) - h + int32(unit)
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}

	hs := strconv.FormatInt(abs, 16)
	if len(hs) < 8 {
		hs = strings.Repeat("0", 8-len(hs)) + hs
	}

	var b strings.Builder
	b.Grow(36)
	b.WriteString(hs[:8])
	b.WriteByte('-')
	b.WriteString(hs[:4])
	b.WriteString("-4")
	b.WriteString(hs[1:4])
	b.WriteString("-a")
	b.WriteString(hs[:3])
	b.WriteByte('-')
	b.WriteString(padEnd(hs, 12))
	return b.String()
}

func padEnd(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat("0", n-len(s))
}
