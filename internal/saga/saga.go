// Package saga implements the workflow orchestration layer: multi-step
// booking workflows that call out to other services, track per-step
// progress, and compensate in reverse order when a step fails. Grounded
// on the same Definition/Step/Instance/Orchestrator shape as the
// reference saga package in the wider booking-rush codebase, backed here
// by gorm instead of Redis to match the rest of this module's
// persistence stack.
package saga

import (
	"context"
	"encoding/json"
	"time"

	"eventix/internal/events"
)

// Status is the lifecycle state of a saga instance.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusRunning      Status = "RUNNING"
	StatusCompleted    Status = "COMPLETED"
	StatusFailed       Status = "FAILED"
	StatusCompensating Status = "COMPENSATING"
	StatusCompensated  Status = "COMPENSATED"
)

// StepStatus is the lifecycle state of one step within a saga instance.
type StepStatus string

const (
	StepPending      StepStatus = "PENDING"
	StepRunning      StepStatus = "RUNNING"
	StepCompleted    StepStatus = "COMPLETED"
	StepFailed       StepStatus = "FAILED"
	StepCompensating StepStatus = "COMPENSATING"
	StepCompensated  StepStatus = "COMPENSATED"
)

// Data is the key/value bag a saga instance carries between steps.
type Data map[string]interface{}

// ExecuteFunc runs a step's forward action. The returned data is merged
// into the instance's Data for subsequent steps.
type ExecuteFunc func(ctx context.Context, data Data) (Data, error)

// CompensateFunc undoes a step's forward action. Only called for steps
// that completed successfully before a later step failed.
type CompensateFunc func(ctx context.Context, data Data) error

// Step is one unit of work in a Definition. Execute/Compensate run
// in-process (every service sharing this saga package runs in the same
// binary today: cmd/booking, cmd/monolith), but a Step also documents
// the bus events its work corresponds to, so the Orchestrator can
// publish them and give other services (notification, metrics, future
// out-of-process workers) real visibility into saga progress without a
// network round trip on the hot path.
type Step struct {
	Name       string
	Execute    ExecuteFunc
	Compensate CompensateFunc
	Timeout    time.Duration
	Retries    int

	// TargetService names the service that logically owns this step's
	// work (e.g. "reservation", "payment"), independent of whether it
	// happens to run in the same process as the orchestrator.
	TargetService string
	// RequestEventType is published before Execute runs.
	RequestEventType events.Type
	// ResponseEventType is published after Execute succeeds.
	ResponseEventType events.Type
	// FailureEventType is published after Execute exhausts its retries.
	FailureEventType events.Type
	// CompensationEventType is published after Compensate runs.
	CompensationEventType events.Type
}

// Definition names a workflow and its ordered steps. The constants in
// workflows.go are the two workflows the booking lifecycle runs:
// booking_creation and booking_confirmation.
type Definition struct {
	Name    string
	Steps   []*Step
	Timeout time.Duration
}

// NewDefinition builds a Definition with the saga-wide defaults (300s
// overall, 30s per step) applied to any step that doesn't override them.
func NewDefinition(name string, steps ...*Step) *Definition {
	for _, s := range steps {
		if s.Timeout == 0 {
			s.Timeout = 30 * time.Second
		}
	}
	return &Definition{Name: name, Steps: steps, Timeout: 300 * time.Second}
}

// StepResult records the outcome of one step execution attempt.
type StepResult struct {
	StepName   string     `json:"step_name"`
	Status     StepStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// Instance is one running (or finished) execution of a Definition,
// persisted so a crashed orchestrator can resume it.
type Instance struct {
	ID             string       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DefinitionName string       `gorm:"column:definition_name;not null;index" json:"definition_name"`
	CorrelationID  string       `gorm:"column:correlation_id;index" json:"correlation_id"`
	Status         Status       `gorm:"type:text;not null" json:"status"`
	DataJSON       string       `gorm:"column:data;type:text" json:"-"`
	ResultsJSON    string       `gorm:"column:results;type:text" json:"-"`
	CurrentStep    int          `json:"current_step"`
	Error          string       `json:"error,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	data           Data         `gorm:"-"`
	results        []StepResult `gorm:"-"`
}

// NewInstance creates a fresh, unsaved Instance in StatusPending.
func NewInstance(definitionName, correlationID string, initial Data) *Instance {
	if initial == nil {
		initial = Data{}
	}
	now := time.Now().UTC()
	return &Instance{
		DefinitionName: definitionName,
		CorrelationID:  correlationID,
		Status:         StatusPending,
		data:           initial,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Data returns the instance's working data, decoding DataJSON lazily
// when the instance was just loaded from storage.
func (i *Instance) Data() Data {
	if i.data == nil {
		i.data = Data{}
		if i.DataJSON != "" {
			_ = json.Unmarshal([]byte(i.DataJSON), &i.data)
		}
	}
	return i.data
}

// MergeData merges vals into the instance's data and re-encodes DataJSON.
func (i *Instance) MergeData(vals Data) {
	d := i.Data()
	for k, v := range vals {
		d[k] = v
	}
	i.marshalData()
}

func (i *Instance) marshalData() {
	b, _ := json.Marshal(i.data)
	i.DataJSON = string(b)
}

// Results returns the step results recorded so far, decoding ResultsJSON
// lazily when the instance was just loaded from storage.
func (i *Instance) Results() []StepResult {
	if i.results == nil && i.ResultsJSON != "" {
		_ = json.Unmarshal([]byte(i.ResultsJSON), &i.results)
	}
	return i.results
}

// AddResult appends a step result and re-encodes ResultsJSON.
func (i *Instance) AddResult(r StepResult) {
	i.results = append(i.Results(), r)
	b, _ := json.Marshal(i.results)
	i.ResultsJSON = string(b)
	i.UpdatedAt = time.Now().UTC()
}
