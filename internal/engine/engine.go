package engine

import (
	"hivedesk/internal/database"
	"hivedesk/internal/engine/actors"
	"hivedesk/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors
type Engine struct {
	inboxActor *actor.PID
}

func NewEngine(
	system *actor.ActorSystem,
	metrics *utils.MetricsCollector,
	db database.Store,
	directory actors.ProfileDirectory,
	publisher actors.EventPublisher,
) *Engine {
	context := system.Root

	inboxProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewInboxActor(db, directory, publisher, metrics)
	})
	inboxPID := context.Spawn(inboxProps)

	return &Engine{
		inboxActor: inboxPID,
	}
}

// GetInboxActor returns the PID of the inbox actor
func (e *Engine) GetInboxActor() *actor.PID {
	return e.inboxActor
}
