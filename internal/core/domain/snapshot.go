package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SlotKey is the durable slot the storefront cart lives under.
const SlotKey = "glam_cart"

const SnapshotVersion = 1

var (
	ErrUnsupportedSnapshotVersion = errors.New("unsupported cart snapshot version")
	ErrMalformedSnapshot          = errors.New("malformed cart snapshot")
)

// CartSnapshot is the persisted form of a cart. The visibility flag is
// never part of it.
type CartSnapshot struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

func EncodeSnapshot(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(CartSnapshot{Version: SnapshotVersion, Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot accepts the versioned envelope and the legacy bare array
// written by the browser storefront. Empty input and JSON null decode to an
// empty cart. The result is normalized: lines with quantity < 1 or without a
// product id are dropped and duplicate keys are merged additively.
func DecodeSnapshot(data []byte) ([]LineItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var items []LineItem
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
	case '{':
		var snap CartSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		if snap.Version != SnapshotVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedSnapshotVersion, snap.Version)
		}
		items = snap.Items
	default:
		return nil, ErrMalformedSnapshot
	}

	return normalize(items), nil
}

func normalize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[LineKey]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 || item.Product.ID == "" {
			continue
		}
		if i, ok := index[item.Key()]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}
