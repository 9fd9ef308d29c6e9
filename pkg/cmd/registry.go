// Package cmd provides common initialization for the command-line binaries.
package cmd

import (
	"log/slog"

	"github.com/deskflow/deskflow/pkg/actions/assignagent"
	"github.com/deskflow/deskflow/pkg/actions/createtask"
	"github.com/deskflow/deskflow/pkg/actions/escalate"
	"github.com/deskflow/deskflow/pkg/actions/notify"
	"github.com/deskflow/deskflow/pkg/actions/triggerworkflow"
	"github.com/deskflow/deskflow/pkg/actions/updatefield"
	"github.com/deskflow/deskflow/pkg/actions/webhookcall"
	"github.com/deskflow/deskflow/pkg/helpdesk"
	"github.com/deskflow/deskflow/pkg/protocol"
	"github.com/deskflow/deskflow/pkg/registry"
	"github.com/deskflow/deskflow/pkg/webhook"
)

// NewRegistry registers every built-in action factory against the helpdesk
// client. The trigger_workflow factory needs the dispatcher, which in turn
// needs the registry, so it is registered later via RegisterTriggerWorkflow.
func NewRegistry(logger *slog.Logger, client *helpdesk.Client, deliverer *webhook.Deliverer) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(notify.NewNotificationFactory(client))
	reg.RegisterAction(notify.NewEmailFactory(client))
	reg.RegisterAction(updatefield.NewPriorityFactory(client))
	reg.RegisterAction(updatefield.NewStatusFactory(client))
	reg.RegisterAction(updatefield.NewTagFactory(client))
	reg.RegisterAction(assignagent.NewFactory(client, client))
	reg.RegisterAction(escalate.NewFactory(client, client))
	reg.RegisterAction(createtask.NewFactory(client))
	reg.RegisterAction(webhookcall.NewFactory(deliverer))

	return reg
}

// RegisterTriggerWorkflow closes the registry/dispatcher cycle once the
// dispatcher exists.
func RegisterTriggerWorkflow(reg *registry.Registry, triggerer protocol.WorkflowTriggerer) {
	reg.RegisterAction(triggerworkflow.NewFactory(triggerer))
}
