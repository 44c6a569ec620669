package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// BodyKind identifica qual variante de Body está preenchida
type BodyKind int

const (
	// BodyAbsent indica que nenhum corpo foi configurado
	BodyAbsent BodyKind = iota
	// BodyNull indica um corpo configurado explicitamente como JSON null
	BodyNull
	// BodyValue indica um corpo JSON qualquer
	BodyValue
)

var jsonNull = []byte("null")

// Body é o corpo configurado de uma rota mock.
// O valor zero é BodyAbsent, que é diferente de um corpo null explícito.
type Body struct {
	kind BodyKind
	raw  json.RawMessage
}

// NoBody retorna um corpo ausente
func NoBody() Body {
	return Body{kind: BodyAbsent}
}

// NullBody retorna um corpo configurado como JSON null
func NullBody() Body {
	return Body{kind: BodyNull}
}

// RawBody cria um corpo a partir de JSON já serializado.
// O conteúdo é compactado; JSON inválido é rejeitado.
func RawBody(raw []byte) (Body, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Body{}, errors.New("corpo vazio não é JSON válido")
	}
	if bytes.Equal(trimmed, jsonNull) {
		return NullBody(), nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return Body{}, err
	}
	return Body{kind: BodyValue, raw: buf.Bytes()}, nil
}

// BodyOf serializa um valor Go qualquer como corpo.
// Um nil é tratado como JSON null.
func BodyOf(v interface{}) (Body, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Body{}, err
	}
	return RawBody(data)
}

// MustBody é como BodyOf, mas entra em pânico em caso de erro
func MustBody(v interface{}) Body {
	b, err := BodyOf(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Kind retorna a variante do corpo
func (b Body) Kind() BodyKind {
	return b.kind
}

// IsAbsent indica se nenhum corpo foi configurado
func (b Body) IsAbsent() bool {
	return b.kind == BodyAbsent
}

// IsNull indica se o corpo é um JSON null explícito
func (b Body) IsNull() bool {
	return b.kind == BodyNull
}

// IsZero permite que `omitzero` omita corpos ausentes na serialização
func (b Body) IsZero() bool {
	return b.kind == BodyAbsent
}

// Bytes retorna o corpo como será escrito na resposta:
// vazio para ausente, "null" para null, o JSON armazenado caso contrário.
func (b Body) Bytes() []byte {
	switch b.kind {
	case BodyNull:
		return append([]byte(nil), jsonNull...)
	case BodyValue:
		return append([]byte(nil), b.raw...)
	default:
		return nil
	}
}

// Size retorna o tamanho serializado do corpo em bytes
func (b Body) Size() int {
	switch b.kind {
	case BodyNull:
		return len(jsonNull)
	case BodyValue:
		return len(b.raw)
	default:
		return 0
	}
}

// Decode desserializa o corpo em dest
func (b Body) Decode(dest interface{}) error {
	if b.kind == BodyAbsent {
		return errors.New("corpo ausente")
	}
	return json.Unmarshal(b.Bytes(), dest)
}

// Equal compara dois corpos pela variante e pelo JSON armazenado
func (b Body) Equal(other Body) bool {
	return b.kind == other.kind && bytes.Equal(b.raw, other.raw)
}

// Clone retorna uma cópia independente do corpo
func (b Body) Clone() Body {
	if b.raw == nil {
		return Body{kind: b.kind}
	}
	return Body{kind: b.kind, raw: append(json.RawMessage(nil), b.raw...)}
}

// MarshalJSON implementa json.Marshaler
func (b Body) MarshalJSON() ([]byte, error) {
	if b.kind == BodyValue {
		return b.Bytes(), nil
	}
	return append([]byte(nil), jsonNull...), nil
}

// UnmarshalJSON implementa json.Unmarshaler.
// Só é chamado quando a chave está presente, então null vira BodyNull.
func (b *Body) UnmarshalJSON(data []byte) error {
	parsed, err := RawBody(data)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
