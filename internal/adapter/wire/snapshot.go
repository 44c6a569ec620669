package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion é a versão atual do formato de arquivo
const SnapshotVersion = 1

// Snapshot é o conteúdo do arquivo de rotas persistido em disco
type Snapshot struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	Routes    []Route   `json:"routes"`
}

// NewSnapshot cria um snapshot com a versão atual
func NewSnapshot(routes []Route, updatedAt time.Time) Snapshot {
	if routes == nil {
		routes = []Route{}
	}
	return Snapshot{
		Version:   SnapshotVersion,
		UpdatedAt: updatedAt.UTC(),
		Routes:    routes,
	}
}

// DecodeSnapshot lê um snapshot, rejeitando versões desconhecidas
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return NewSnapshot(nil, time.Time{}), nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot de rotas inválido: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("versão de snapshot não suportada: %d", snap.Version)
	}
	return snap, nil
}

// DecodeSeed aceita tanto uma lista de rotas quanto um objeto {"routes": [...]}
func DecodeSeed(data []byte) ([]RouteInput, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var inputs []RouteInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, fmt.Errorf("arquivo de seed inválido: %w", err)
		}
		return inputs, nil
	}

	var wrapped struct {
		Routes []RouteInput `json:"routes"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("arquivo de seed inválido: %w", err)
	}
	return wrapped.Routes, nil
}
