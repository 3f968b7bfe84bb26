package sync

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Payload árbol genérico clave-valor con el que se modela cualquier registro del
// ERP remoto. Los nombres de campo remotos cambian entre tipos de registro y
// versiones, así que la extracción siempre es por ruta punteada con ausencia
// tolerada: un segmento faltante produce el valor cero, nunca un error.
type Payload map[string]any

// Ref referencia remota a otro registro: {id, refName, links:[{href}]}.
type Ref struct {
	ID   int64
	Name string
	Link string
}

// IDString el id como string; "" si la referencia está vacía.
func (r Ref) IDString() string {
	if r.ID == 0 {
		return ""
	}
	return strconv.FormatInt(r.ID, 10)
}

// Get recorre la ruta punteada y devuelve el valor crudo y si existía.
func (p Payload) Get(path string) (any, bool) {
	if p == nil || path == "" {
		return nil, false
	}
	var cur any = map[string]any(p)
	for _, seg := range strings.Split(path, ".") {
		m, ok := toMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Str devuelve el valor como string; "" si falta o no es representable.
func (p Payload) Str(path string) string {
	v, ok := p.Get(path)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Num devuelve el valor como float64 finito; 0 si falta, es null o no parsea.
func (p Payload) Num(path string) float64 {
	v, _ := p.Get(path)
	return ToNumber(v)
}

// Dec devuelve el valor como decimal; 0 si falta, es null o no parsea.
func (p Payload) Dec(path string) decimal.Decimal {
	v, _ := p.Get(path)
	return ToDecimal(v)
}

// Int devuelve el valor como entero (truncando); 0 si falta o no parsea.
func (p Payload) Int(path string) int64 {
	return int64(p.Num(path))
}

// Bool devuelve el valor como booleano. Acepta bool nativo y los strings
// "true"/"T" que el remoto usa en algunos feeds; cualquier otra cosa es false.
func (p Payload) Bool(path string) bool {
	v, ok := p.Get(path)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "T"
	default:
		return false
	}
}

// Has indica si la ruta existe con valor no nulo.
func (p Payload) Has(path string) bool {
	v, ok := p.Get(path)
	return ok && v != nil
}

// Sub devuelve el objeto anidado en la ruta; nil si falta o no es objeto.
func (p Payload) Sub(path string) Payload {
	v, ok := p.Get(path)
	if !ok {
		return nil
	}
	m, ok := toMap(v)
	if !ok {
		return nil
	}
	return Payload(m)
}

// Items devuelve el arreglo de objetos en la ruta; los elementos que no sean
// objetos se descartan. El remoto anida sublistas como {path: {items: [...]}}.
func (p Payload) Items(path string) []Payload {
	v, ok := p.Get(path)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Payload, 0, len(arr))
	for _, el := range arr {
		if m, ok := toMap(el); ok {
			out = append(out, Payload(m))
		}
	}
	return out
}

// Ref interpreta el objeto en la ruta como referencia remota {id, refName, links}.
func (p Payload) Ref(path string) Ref {
	sub := p.Sub(path)
	if sub == nil {
		return Ref{}
	}
	r := Ref{
		ID:   sub.Int("id"),
		Name: sub.Str("refName"),
	}
	if links := sub.Items("links"); len(links) > 0 {
		r.Link = links[0].Str("href")
	}
	return r
}

// ToNumber coerción numérica tolerante: number, string numérico, bool o nil.
// Siempre devuelve un float64 finito; null/ausente/imparseable -> 0.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// ToDecimal como ToNumber pero con precisión decimal para montos.
func ToDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	default:
		return decimal.Zero
	}
}

func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Payload:
		return m, true
	default:
		return nil, false
	}
}
