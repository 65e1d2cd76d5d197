package store

const (
	saveLedgerEntry = `
		INSERT INTO ledger_entries (
			id,
			account_id,
			category,
			amount,
			currency,
			memo,
			occurred_at,
			created_at,
			updated_at,
			synced_at,
			pending_sync,
			local_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

	getLedgerEntry = `
		SELECT
			id,
			account_id,
			category,
			amount,
			currency,
			memo,
			occurred_at,
			created_at,
			updated_at,
			synced_at,
			pending_sync,
			local_id
		FROM ledger_entries
		WHERE id = $1;`

	updateLedgerEntry = `
		UPDATE ledger_entries SET
			account_id   = $1,
			category     = $2,
			amount       = $3,
			currency     = $4,
			memo         = $5,
			occurred_at  = $6,
			updated_at   = $7,
			pending_sync = true
		WHERE id = $8;`

	deleteLedgerEntry = `
		DELETE FROM ledger_entries WHERE id = $1;`

	bulkPutLedgerEntry = `
		INSERT INTO ledger_entries (
			id, account_id, category, amount, currency, memo,
			occurred_at, created_at, updated_at, synced_at, pending_sync, local_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, NULL)
		ON CONFLICT (id) DO UPDATE SET
			account_id   = excluded.account_id,
			category     = excluded.category,
			amount       = excluded.amount,
			currency     = excluded.currency,
			memo         = excluded.memo,
			occurred_at  = excluded.occurred_at,
			updated_at   = excluded.updated_at,
			synced_at    = excluded.synced_at,
			pending_sync = false,
			local_id     = NULL;`

	saveAccount = `
		INSERT INTO accounts (
			id, name, kind, currency, balance,
			created_at, updated_at, synced_at, pending_sync, local_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	getAccount = `
		SELECT id, name, kind, currency, balance,
			created_at, updated_at, synced_at, pending_sync, local_id
		FROM accounts
		WHERE id = $1;`

	getAllAccounts = `
		SELECT id, name, kind, currency, balance,
			created_at, updated_at, synced_at, pending_sync, local_id
		FROM accounts
		ORDER BY name;`

	updateAccount = `
		UPDATE accounts SET
			name         = $1,
			kind         = $2,
			currency     = $3,
			balance      = $4,
			updated_at   = $5,
			pending_sync = true
		WHERE id = $6;`

	deleteAccount = `
		DELETE FROM accounts WHERE id = $1;`

	bulkPutAccount = `
		INSERT INTO accounts (
			id, name, kind, currency, balance,
			created_at, updated_at, synced_at, pending_sync, local_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, NULL)
		ON CONFLICT (id) DO UPDATE SET
			name         = excluded.name,
			kind         = excluded.kind,
			currency     = excluded.currency,
			balance      = excluded.balance,
			updated_at   = excluded.updated_at,
			synced_at    = excluded.synced_at,
			pending_sync = false,
			local_id     = NULL;`

	saveBudget = `
		INSERT INTO budgets (
			id, category, month, limit_amount, currency,
			created_at, updated_at, synced_at, pending_sync, local_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	getBudget = `
		SELECT id, category, month, limit_amount, currency,
			created_at, updated_at, synced_at, pending_sync, local_id
		FROM budgets
		WHERE id = $1;`

	getAllBudgets = `
		SELECT id, category, month, limit_amount, currency,
			created_at, updated_at, synced_at, pending_sync, local_id
		FROM budgets
		ORDER BY month DESC, category;`

	updateBudget = `
		UPDATE budgets SET
			category     = $1,
			month        = $2,
			limit_amount = $3,
			currency     = $4,
			updated_at   = $5,
			pending_sync = true
		WHERE id = $6;`

	deleteBudget = `
		DELETE FROM budgets WHERE id = $1;`

	bulkPutBudget = `
		INSERT INTO budgets (
			id, category, month, limit_amount, currency,
			created_at, updated_at, synced_at, pending_sync, local_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, NULL)
		ON CONFLICT (id) DO UPDATE SET
			category     = excluded.category,
			month        = excluded.month,
			limit_amount = excluded.limit_amount,
			currency     = excluded.currency,
			updated_at   = excluded.updated_at,
			synced_at    = excluded.synced_at,
			pending_sync = false,
			local_id     = NULL;`

	saveGoal = `
		INSERT INTO goals (
			id, name, target_amount, saved_amount, currency, deadline,
			created_at, updated_at, synced_at, pending_sync, local_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	getGoal = `
		SELECT id, name, target_amount, saved_amount, currency, deadline,
			created_at, updated_at, synced_at, pending_sync, local_id
		FROM goals
		WHERE id = $1;`

	getAllGoals = `
		SELECT id, name, target_amount, saved_amount, currency, deadline,
			created_at, updated_at, synced_at, pending_sync, local_id
		FROM goals
		ORDER BY name;`

	updateGoal = `
		UPDATE goals SET
			name          = $1,
			target_amount = $2,
			saved_amount  = $3,
			currency      = $4,
			deadline      = $5,
			updated_at    = $6,
			pending_sync  = true
		WHERE id = $7;`

	deleteGoal = `
		DELETE FROM goals WHERE id = $1;`

	bulkPutGoal = `
		INSERT INTO goals (
			id, name, target_amount, saved_amount, currency, deadline,
			created_at, updated_at, synced_at, pending_sync, local_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, NULL)
		ON CONFLICT (id) DO UPDATE SET
			name          = excluded.name,
			target_amount = excluded.target_amount,
			saved_amount  = excluded.saved_amount,
			currency      = excluded.currency,
			deadline      = excluded.deadline,
			updated_at    = excluded.updated_at,
			synced_at     = excluded.synced_at,
			pending_sync  = false,
			local_id      = NULL;`

	insertQueueOperation = `
		INSERT INTO sync_queue (
			operation_type,
			entity_type,
			entity_id,
			payload,
			enqueued_at,
			retry_count,
			status,
			last_error
		) VALUES ($1, $2, $3, $4, $5, 0, 'pending', '');`

	getQueueOperation = `
		SELECT id, operation_type, entity_type, entity_id, payload,
			enqueued_at, retry_count, status, last_error
		FROM sync_queue
		WHERE id = $1;`

	listPendingQueueOperations = `
		SELECT id, operation_type, entity_type, entity_id, payload,
			enqueued_at, retry_count, status, last_error
		FROM sync_queue
		WHERE status = 'pending' AND retry_count < $1
		ORDER BY enqueued_at ASC, id ASC;`

	markQueueOperationProcessing = `
		UPDATE sync_queue
		SET status = 'processing'
		WHERE id = $1 AND status = 'pending';`

	deleteQueueOperation = `
		DELETE FROM sync_queue WHERE id = $1;`

	recordQueueOperationFailure = `
		UPDATE sync_queue
		SET retry_count = retry_count + 1,
			last_error  = $1,
			status      = CASE WHEN retry_count + 1 >= $2 THEN 'failed' ELSE 'pending' END
		WHERE id = $3 AND status = 'processing';`

	countPendingQueueOperations = `
		SELECT COUNT(*) FROM sync_queue WHERE status = 'pending';`

	clearFailedQueueOperations = `
		DELETE FROM sync_queue WHERE status = 'failed';`

	resetProcessingQueueOperations = `
		UPDATE sync_queue SET status = 'pending' WHERE status = 'processing';`

	remapQueueEntityID = `
		UPDATE sync_queue
		SET entity_id = $1
		WHERE entity_type = $2 AND entity_id = $3;`

	getMetadataValue = `
		SELECT value FROM metadata WHERE key = $1;`

	setMetadataValue = `
		INSERT INTO metadata (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at;`

	deleteMetadataValue = `
		DELETE FROM metadata WHERE key = $1;`
)

// markSyncedQueries and adoptServerIDQueries let the shared replica
// bookkeeping helpers address any replica table.
var (
	markSyncedQueries = map[string]string{
		"ledger_entries": `UPDATE ledger_entries SET synced_at = $1, pending_sync = false WHERE id = $2;`,
		"accounts":       `UPDATE accounts SET synced_at = $1, pending_sync = false WHERE id = $2;`,
		"budgets":        `UPDATE budgets SET synced_at = $1, pending_sync = false WHERE id = $2;`,
		"goals":          `UPDATE goals SET synced_at = $1, pending_sync = false WHERE id = $2;`,
	}

	adoptServerIDQueries = map[string]string{
		"ledger_entries": `UPDATE ledger_entries SET id = $1, local_id = NULL WHERE id = $2;`,
		"accounts":       `UPDATE accounts SET id = $1, local_id = NULL WHERE id = $2;`,
		"budgets":        `UPDATE budgets SET id = $1, local_id = NULL WHERE id = $2;`,
		"goals":          `UPDATE goals SET id = $1, local_id = NULL WHERE id = $2;`,
	}
)
