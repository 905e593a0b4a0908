// Package shape снимает неоднозначность "нет, один объект или много объектов" в
// ответах апстрима и приводит их к упорядоченным последовательностям записей.
package shape

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record - один декодированный объект апстрима.
type Record = map[string]any

// Policy решает, что делать с элементами, которые не являются объектами.
type Policy int

const (
	// Drop отбрасывает элементы, не являющиеся объектами.
	Drop Policy = iota
	// WrapDevice превращает голый скалярный id в минимальную запись устройства.
	WrapDevice
)

// mxj кладет текст элемента под этот ключ, если у элемента есть атрибуты.
const textKey = "#text"

// List приводит v к упорядоченной последовательности. Никогда не падает.
func List(v any, p Policy) []Record {
	switch t := v.(type) {
	case nil:
		return []Record{}
	case map[string]any:
		return []Record{t}
	case []map[string]any:
		out := make([]Record, 0, len(t))
		for _, r := range t {
			if r != nil {
				out = append(out, r)
			}
		}
		return out
	case []any:
		out := make([]Record, 0, len(t))
		for _, e := range t {
			if r, ok := element(e, p); ok {
				out = append(out, r)
			}
		}
		return out
	default:
		if r, ok := element(t, p); ok {
			return []Record{r}
		}
		return []Record{}
	}
}

func element(e any, p Policy) (Record, bool) {
	if r, ok := e.(map[string]any); ok {
		return r, r != nil
	}
	if p != WrapDevice {
		return nil, false
	}
	id := Scalar(e)
	if id == "" {
		return nil, false
	}
	return Record{"id": id, "name": "", "status": "unknown"}, true
}

// Dig спускается по вложенным объектам по ключам и возвращает nil при любом
// промахе.
func Dig(v any, path ...string) any {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// Items разворачивает XML-контейнер вида {key: one|many}.
func Items(v any, key string) []Record {
	return List(Dig(v, key), Drop)
}

// Unwrap нормализует XML-узел items с заранее неизвестным именем элемента: из
// {elem: one|many} берутся элементы, остальное проходит через List.
func Unwrap(v any, p Policy) []Record {
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		for _, inner := range m {
			switch inner.(type) {
			case map[string]any, []any, []map[string]any:
				return List(inner, p)
			}
		}
	}
	return List(v, p)
}

// Map возвращает v как запись или nil.
func Map(v any) Record {
	m, _ := v.(map[string]any)
	return m
}

// Scalar превращает листовое значение в строку. Объекты и списки дают "".
func Scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		return Scalar(t[textKey])
	default:
		return ""
	}
}

// String возвращает первый непустой скаляр среди ключей.
func String(r Record, keys ...string) string {
	for _, k := range keys {
		if s := Scalar(r[k]); s != "" {
			return s
		}
	}
	return ""
}

// Int разбирает первый найденный ключ как целое число.
func Int(r Record, keys ...string) *int {
	s := String(r, keys...)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n = int(f)
	}
	return &n
}

// Without копирует r без указанных ключей.
func Without(r Record, keys ...string) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
