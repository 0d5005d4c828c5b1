package cart

import "time"

// Event is anything the cart announces to the rest of the process.
type Event interface {
	Type() string
}

// Dispatcher delivers events. Implementations must not block for long: the
// store dispatches synchronously at the end of every mutation.
type Dispatcher interface {
	Dispatch(event Event) error
}

type Operation string

const (
	OpAdd    Operation = "add"
	OpUpdate Operation = "update"
	OpRemove Operation = "remove"
	OpClear  Operation = "clear"
)

// Changed is emitted after every cart mutation, once state and persistence
// have been updated.
type Changed struct {
	Session    string    `json:"session_id"`
	Operation  Operation `json:"operation"`
	TotalItems int       `json:"total_items"`
	TotalPrice float64   `json:"total_price"`
	At         time.Time `json:"at"`
}

func (Changed) Type() string { return "cart.changed" }

// SessionID lets session-scoped subscribers route the event.
func (e Changed) SessionID() string { return e.Session }

// MultiDispatcher fans an event out to every dispatcher and returns the first
// error after all of them ran.
type MultiDispatcher []Dispatcher

func (m MultiDispatcher) Dispatch(event Event) error {
	var first error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Dispatch(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(Event) error

func (f DispatcherFunc) Dispatch(event Event) error { return f(event) }

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(Event) error { return nil }
