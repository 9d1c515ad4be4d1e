//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"realchat/domain/event"
)

// EventSink receives domain events destined for one connection.
// Implementations must not block: delivery to a slow or closing
// connection is dropped, never allowed to stall the caller.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Announcer delivers an event to every live connection, regardless of
// group membership. Used for presence transitions.
type Announcer interface {
	Announce(e event.DomainEvent)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself; the supervisor recovers its panics.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
