package host

import "cellgraph/coord"

// FanOutNotifier broadcasts each display-changed event to every
// underlying notifier in order, stopping and returning the first
// error encountered.
type FanOutNotifier struct {
	Targets []DisplayNotifier
}

func (f FanOutNotifier) CellDisplayChanged(key coord.Key, value Value) error {
	for _, t := range f.Targets {
		if t == nil {
			continue
		}
		if err := t.CellDisplayChanged(key, value); err != nil {
			return err
		}
	}
	return nil
}

// NoopNotifier discards every display-changed event; an engine given
// it behaves as with a nil notifier.
type NoopNotifier struct{}

func (NoopNotifier) CellDisplayChanged(coord.Key, Value) error {
	return nil
}
