package store

import (
	"encoding/binary"
	"strconv"

	"fleetreport/internal/domain/snapshot"

	"github.com/zeebo/blake3"
)

// NoDate подставляется вместо даты начала сбойной проверки, пришедшей без нее.
const NoDate = "__no_date__"

// CheckKey возвращает дату и время из естественного ключа сбойной проверки.
// Проверки без даты различаются по хешу описания.
func CheckKey(date, tm, description string) (string, string) {
	if date == "" && tm == "" {
		return NoDate, DescriptionHash(description)
	}
	return snapshot.Truncate(date, maxCheckKey), snapshot.Truncate(tm, maxCheckKey)
}

// DescriptionHash стабилен между процессами и релизами.
func DescriptionHash(description string) string {
	if description == "" {
		return "0"
	}
	sum := blake3.Sum256([]byte(description))
	return strconv.FormatUint(binary.BigEndian.Uint64(sum[:8])%10_000_000_000, 10)
}
