package engine

import (
	"cellgraph/coord"
	"cellgraph/host"
)

// Document is the canonical serialized form: sheet bounds plus every
// cell's raw text keyed by its serialized coordinate.
type Document struct {
	SheetBounds [2]uint           `json:"sheet_bounds"`
	Data        map[string]string `json:"data"`
}

// ToSerializable snapshots the store's raw values into a Document. It
// never fails: every key in the store was itself parsed successfully,
// so its serialized form is always well-formed.
func (s *State) ToSerializable() Document {
	doc := Document{
		SheetBounds: s.SheetBounds,
		Data:        make(map[string]string, len(s.cells)),
	}
	for key, cell := range s.cells {
		doc.Data[key.Serialize()] = cell.Raw
	}
	return doc
}

// FromSerializable builds a fresh State from a Document. Keys are
// parsed strictly: a malformed key fails the whole load with
// BadSerializationError. Every cell is first inserted unresolved, then
// a full pass resolves all of them with Display=Noop so the host can
// render from the store once loading completes.
func FromSerializable(doc Document, caller host.FunctionCaller, notifier host.DisplayNotifier) (*State, error) {
	s := New(caller, notifier)
	s.SheetBounds = doc.SheetBounds

	keys := make([]coord.Key, 0, len(doc.Data))
	for rawKey, raw := range doc.Data {
		key, err := coord.ParseSerialized(rawKey)
		if err != nil {
			return nil, &BadSerializationError{Reason: err.Error()}
		}
		if err := s.Insert(key, raw); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	for _, key := range keys {
		if _, err := s.resolveCell(key, DisplayNoop); err != nil {
			return nil, err
		}
	}
	return s, nil
}
