package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'inactive')),
				trigger JSONB NOT NULL,
				actions JSONB NOT NULL,
				priority INTEGER NOT NULL DEFAULT 100,
				execution_count INTEGER NOT NULL DEFAULT 0,
				success_count INTEGER NOT NULL DEFAULT 0,
				success_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				last_executed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_tenant_id ON workflows(tenant_id);
			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_priority ON workflows(priority);
		`,
		2: `
			CREATE TABLE workflow_executions (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				tenant_id VARCHAR(255) NOT NULL,
				event_type VARCHAR(100) NOT NULL,
				resource_type VARCHAR(100) NOT NULL,
				resource_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				executed_actions JSONB NOT NULL DEFAULT '[]',
				error TEXT NOT NULL DEFAULT ''
			);

			-- History survives workflow deletion, so no foreign key on workflow_id.
			CREATE INDEX idx_workflow_executions_workflow_id ON workflow_executions(workflow_id);
			CREATE INDEX idx_workflow_executions_started_at ON workflow_executions(started_at);
		`,
		3: `
			CREATE TABLE webhooks (
				id UUID PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				url TEXT NOT NULL,
				events JSONB NOT NULL,
				active BOOLEAN NOT NULL DEFAULT TRUE,
				secret TEXT NOT NULL DEFAULT '',
				headers JSONB NOT NULL DEFAULT '{}',
				max_retries INTEGER NOT NULL DEFAULT 3,
				retry_delay_seconds INTEGER NOT NULL DEFAULT 5,
				success_count INTEGER NOT NULL DEFAULT 0,
				failure_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				last_triggered_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_webhooks_tenant_id ON webhooks(tenant_id);
			CREATE INDEX idx_webhooks_active ON webhooks(active);
		`,
	}
}
