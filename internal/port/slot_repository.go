package port

import "context"

type CartSlot interface {
	// Load returns the stored payload, or nil with no error when the slot is empty
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored payload in full
	Save(ctx context.Context, data []byte) error
}

type SlotProvider interface {
	// Slot returns the durable slot stored under key
	Slot(key string) CartSlot
}
