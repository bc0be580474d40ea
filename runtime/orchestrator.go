// Package runtime wires the session, its event pipeline and the user-facing workers
// under one supervisor. It holds no business logic.
package runtime

import (
	"chat-rooms/contract"
	"chat-rooms/runtime/workers"
	"chat-rooms/session"
	"context"
	"log/slog"
	"sync"
	"time"
)

type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	supervisor  contract.ISupervisor
	session     *session.Manager
	serverURL   string
	sinks       []contract.EventSink
	workers     []contract.Worker
	sinkTimeout time.Duration
	cancel      context.CancelFunc
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, manager *session.Manager,
	serverURL string, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:         log,
		supervisor:  supervisor,
		session:     manager,
		serverURL:   serverURL,
		sinkTimeout: sinkTimeout,
	}
}

// Add registers sinks receiving every session event, in registration order.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, sinks...)
}

// AddWorkers registers extra workers run next to the session.
func (o *Orchestrator) AddWorkers(w ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.workers = append(o.workers, w...)
}

// Start connects the session and blocks until Stop is called or ctx is canceled.
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.mu.Lock()
	o.cancel = cancel
	fanout := workers.NewEventFanout(o.log, o.session.Events(), o.sinkTimeout, o.sinks...)
	o.supervisor.Add(o.session, fanout)
	o.supervisor.Add(o.workers...)
	o.mu.Unlock()

	o.session.Start(o.serverURL)

	o.log.Info("Starting session and all supervised workers", "url", o.serverURL)
	o.supervisor.Run(ctx)
	o.session.Dispose()
	o.log.Info("Orchestrator stopped")
	return nil
}

// Stop disposes the session and cancels every worker.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.session.Dispose()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.supervisor.Stop()
}
