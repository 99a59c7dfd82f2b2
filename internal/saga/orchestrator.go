package saga

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventix/internal/events"

	"go.uber.org/zap"
)

// Publisher is satisfied by *bus.Bus. When wired via SetPublisher, the
// orchestrator publishes each step's documented request/response/
// failure/compensation event around its in-process Execute/Compensate
// call, so notification, metrics, and any future out-of-process
// consumer see real saga progress on the bus even though every step
// here runs in the same binary as the orchestrator.
type Publisher interface {
	Publish(eventType events.Type, correlationID, userID string, payload any) (events.Envelope, error)
}

// Orchestrator registers workflow Definitions and drives Instances
// through their steps, persisting progress after every step so a
// restart can resume from the last completed step.
type Orchestrator struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
	store       Store
	logger      *zap.Logger
	publisher   Publisher
}

// NewOrchestrator builds an Orchestrator backed by store.
func NewOrchestrator(store Store, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{definitions: make(map[string]*Definition), store: store, logger: logger}
}

// SetPublisher wires a bus publisher into the orchestrator. Without one,
// the orchestrator still runs every step; it just stays silent on the
// bus about it.
func (o *Orchestrator) SetPublisher(p Publisher) {
	o.publisher = p
}

// Register adds a workflow Definition, keyed by its Name.
func (o *Orchestrator) Register(def *Definition) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.definitions[def.Name] = def
}

func (o *Orchestrator) definition(name string) (*Definition, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	def, ok := o.definitions[name]
	if !ok {
		return nil, fmt.Errorf("saga: unregistered workflow %q", name)
	}
	return def, nil
}

// Start creates and persists a new Instance of the named workflow, then
// runs it to completion (or into compensation) synchronously.
func (o *Orchestrator) Start(ctx context.Context, workflow, correlationID string, initial Data) (*Instance, error) {
	def, err := o.definition(workflow)
	if err != nil {
		return nil, err
	}
	instance := NewInstance(workflow, correlationID, initial)
	if err := o.store.Save(ctx, instance); err != nil {
		return nil, fmt.Errorf("save saga instance: %w", err)
	}
	sagaCtx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()
	return o.run(sagaCtx, def, instance)
}

// Resume continues an Instance left in RUNNING or COMPENSATING status by
// a previous orchestrator process that died mid-workflow.
func (o *Orchestrator) Resume(ctx context.Context, id string) (*Instance, error) {
	instance, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	def, err := o.definition(instance.DefinitionName)
	if err != nil {
		return nil, err
	}
	sagaCtx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()
	if instance.Status == StatusCompensating {
		return o.compensate(sagaCtx, def, instance)
	}
	return o.run(sagaCtx, def, instance)
}

func (o *Orchestrator) run(ctx context.Context, def *Definition, instance *Instance) (*Instance, error) {
	instance.Status = StatusRunning
	o.persist(ctx, instance)

	var failed error
	for i := instance.CurrentStep; i < len(def.Steps); i++ {
		instance.CurrentStep = i
		step := def.Steps[i]

		select {
		case <-ctx.Done():
			failed = ctx.Err()
		default:
			failed = o.runStep(ctx, step, instance)
		}
		o.persist(ctx, instance)
		if failed != nil {
			break
		}
	}

	if failed != nil {
		instance.Error = failed.Error()
		return o.compensate(ctx, def, instance)
	}

	now := time.Now().UTC()
	instance.Status = StatusCompleted
	instance.CompletedAt = &now
	o.persist(ctx, instance)
	o.logger.Info("saga completed", zap.String("workflow", def.Name), zap.String("saga_id", instance.ID))
	return instance, nil
}

func (o *Orchestrator) runStep(ctx context.Context, step *Step, instance *Instance) error {
	stepCtx, cancel := context.WithTimeout(ctx, step.Timeout)
	defer cancel()

	result := StepResult{StepName: step.Name, Status: StepRunning, StartedAt: time.Now().UTC()}
	o.publishStep(instance, step, step.RequestEventType, instance.Data())

	maxAttempts := step.Retries + 1
	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-stepCtx.Done():
				lastErr = stepCtx.Err()
				break
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > 8*time.Second {
				backoff = 8 * time.Second
			}
		}
		data, err := step.Execute(stepCtx, instance.Data())
		if err == nil {
			instance.MergeData(data)
			result.Status = StepCompleted
			result.FinishedAt = time.Now().UTC()
			instance.AddResult(result)
			o.publishStep(instance, step, step.ResponseEventType, instance.Data())
			return nil
		}
		lastErr = err
		o.logger.Warn("saga step failed, retrying", zap.String("saga_id", instance.ID), zap.String("step", step.Name), zap.Int("attempt", attempt+1), zap.Error(err))
	}

	result.Status = StepFailed
	result.Error = lastErr.Error()
	result.FinishedAt = time.Now().UTC()
	instance.AddResult(result)
	o.publishStep(instance, step, step.FailureEventType, map[string]interface{}{"error": lastErr.Error()})
	return lastErr
}

// publishStep emits eventType if both a Publisher is wired and the step
// actually declares that event (zero value skips silently, since not
// every step has a meaningful failure/compensation event).
func (o *Orchestrator) publishStep(instance *Instance, step *Step, eventType events.Type, payload any) {
	if o.publisher == nil || eventType == "" {
		return
	}
	userID, _ := instance.Data()["user_id"].(string)
	if _, err := o.publisher.Publish(eventType, instance.CorrelationID, userID, payload); err != nil {
		o.logger.Warn("failed to publish saga step event",
			zap.String("saga_id", instance.ID), zap.String("step", step.Name),
			zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func (o *Orchestrator) compensate(ctx context.Context, def *Definition, instance *Instance) (*Instance, error) {
	instance.Status = StatusCompensating
	o.persist(ctx, instance)
	o.logger.Warn("saga compensating", zap.String("workflow", def.Name), zap.String("saga_id", instance.ID), zap.String("error", instance.Error))

	byName := make(map[string]*Step, len(def.Steps))
	for _, s := range def.Steps {
		byName[s.Name] = s
	}

	for i := len(instance.Results()) - 1; i >= 0; i-- {
		res := instance.Results()[i]
		if res.Status != StepCompleted {
			continue
		}
		step, ok := byName[res.StepName]
		if !ok || step.Compensate == nil {
			continue
		}
		compCtx, cancel := context.WithTimeout(ctx, step.Timeout)
		err := step.Compensate(compCtx, instance.Data())
		cancel()
		if err != nil {
			o.logger.Error("saga compensation step failed", zap.String("saga_id", instance.ID), zap.String("step", step.Name), zap.Error(err))
			continue
		}
		o.publishStep(instance, step, step.CompensationEventType, instance.Data())
	}

	instance.Status = StatusCompensated
	now := time.Now().UTC()
	instance.CompletedAt = &now
	o.persist(ctx, instance)
	return instance, fmt.Errorf("saga %s compensated: %s", instance.ID, instance.Error)
}

func (o *Orchestrator) persist(ctx context.Context, instance *Instance) {
	if err := o.store.Update(ctx, instance); err != nil {
		o.logger.Error("failed to persist saga instance", zap.String("saga_id", instance.ID), zap.Error(err))
	}
}
