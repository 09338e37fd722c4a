// Package fieldconv normaliza valores que el upstream entrega con forma
// inconsistente: un mismo campo puede llegar como array, como string unida por
// comas o como string con JSON embebido. Todos los lectores del inventario
// pasan por aquí para tolerar esas variantes.
package fieldconv

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// StringList convierte cualquier variante a []string sin vacíos.
func StringList(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return compact(t)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(cast.ToString(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return stringToList(t)
	default:
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			return []string{s}
		}
		return nil
	}
}

func stringToList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// JSON embebido primero; si no parsea, separar por comas.
	if strings.HasPrefix(s, "[") {
		var arr []interface{}
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return StringList(arr)
		}
	}
	parts := strings.Split(s, ",")
	return compact(parts)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// First devuelve el primer elemento de un campo que puede ser escalar o lista.
func First(v interface{}) string {
	list := StringList(v)
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// Int convierte valores numéricos que pueden traer comas de millar ("45,000")
// o venir como primer elemento de una lista. Cero si no es interpretable.
func Int(v interface{}) int {
	s := First(v)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	if f, err := cast.ToFloat64E(s); err == nil {
		return int(f)
	}
	return 0
}

// Decimal para montos (precio, enganche). Cero si no es interpretable.
func Decimal(v interface{}) decimal.Decimal {
	s := First(v)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Bool tolera "true"/"1"/1/true.
func Bool(v interface{}) bool {
	return cast.ToBool(v)
}
