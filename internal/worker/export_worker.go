// Package worker turns record change notifications into Google Sheets
// audit rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"grana/internal/core"
	"grana/internal/events"
	"grana/internal/export"
	"grana/internal/store"
)

// ExportWorker consumes record change messages and appends the affected
// transaction to the export sheet. Only transactions are exported; other
// record kinds are acknowledged and skipped.
type ExportWorker struct {
	store    store.Store
	exporter export.RowAppender
}

func NewExportWorker(st store.Store, exporter export.RowAppender) *ExportWorker {
	return &ExportWorker{
		store:    st,
		exporter: exporter,
	}
}

// HandleRecordChange processes a single record change message.
func (w *ExportWorker) HandleRecordChange(ctx context.Context, msg *events.RecordChangeMessage) error {
	if msg.Kind != events.KindTransaction {
		slog.DebugContext(ctx, "Skipping non-transaction change",
			"kind", msg.Kind,
			"id", msg.ID)
		return nil
	}

	switch msg.Op {
	case events.OpCreated, events.OpUpdated:
		return w.exportTransaction(ctx, msg)
	case events.OpDeleted:
		// The record is gone; append a tombstone row carrying the ID so
		// the sheet reflects the deletion.
		tombstone := core.Transaction{
			ID:          msg.ID,
			OwnerID:     msg.OwnerID,
			Description: "(excluída)",
			Date:        core.Today(),
		}
		if _, err := w.exporter.AppendTransaction(ctx, msg.Op, tombstone, ""); err != nil {
			return fmt.Errorf("export deletion: %w", err)
		}
		return nil
	default:
		slog.WarnContext(ctx, "Unknown change operation", "op", msg.Op, "id", msg.ID)
		return nil
	}
}

func (w *ExportWorker) exportTransaction(ctx context.Context, msg *events.RecordChangeMessage) error {
	txs, err := w.store.ListTransactions(ctx, msg.OwnerID)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	var found *core.Transaction
	for i := range txs {
		if txs[i].ID == msg.ID {
			found = &txs[i]
			break
		}
	}
	if found == nil {
		// Deleted between publish and consume; nothing to export.
		slog.WarnContext(ctx, "Transaction vanished before export",
			"id", msg.ID,
			"owner_id", msg.OwnerID)
		return nil
	}

	categoryName := ""
	if found.CategoryID != "" {
		cats, err := w.store.ListCategories(ctx, msg.OwnerID)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		for _, c := range cats {
			if c.ID == found.CategoryID {
				categoryName = c.Name
				break
			}
		}
	}

	ref, err := w.exporter.AppendTransaction(ctx, msg.Op, *found, categoryName)
	if err != nil {
		return fmt.Errorf("append transaction row: %w", err)
	}

	slog.InfoContext(ctx, "Exported record change",
		"id", msg.ID,
		"op", msg.Op,
		"range", ref)
	return nil
}
