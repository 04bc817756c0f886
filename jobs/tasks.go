package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola de trabajos de inventario.
	QueueDefault = "default"
	// TaskReconcileInventory concilia el ledger contra los saldos.
	TaskReconcileInventory = "inventory:reconcile"
)

// ReconcilePayload alcance de la conciliación. ProductID vacío recorre todos los productos.
type ReconcilePayload struct {
	ProductID string `json:"product_id,omitempty"`
}

// NewReconcileTask construye la tarea de conciliación.
func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileInventory, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
