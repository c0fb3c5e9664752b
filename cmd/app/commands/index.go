package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/index"
	searchUseCase "github.com/rentaldesk/searchsync/internal/search/usecase"
)

// RunInitIndex creates the search index when it does not exist yet.
func RunInitIndex(
	ctx context.Context,
	syncUseCase searchUseCase.SyncUseCase,
	logger *slog.Logger,
	writer io.Writer,
	indexName string,
) error {
	if err := syncUseCase.InitIndex(ctx); err != nil {
		return fmt.Errorf("failed to initialize index: %w", err)
	}

	logger.Info("index initialized", slog.String("index", indexName))
	_, err := fmt.Fprintf(writer, "Index %q is ready\n", indexName)
	return err
}

// RunReindex rebuilds the documents of ids, or of every item when ids is empty.
// Progress and log lines are printed as they arrive in text format. Items that
// failed are listed but do not fail the command; a run that could not reach the
// backend does.
func RunReindex(
	ctx context.Context,
	syncUseCase searchUseCase.SyncUseCase,
	logger *slog.Logger,
	writer io.Writer,
	ids []int64,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("invalid item id: %d", id)
		}
	}

	observer := progressObserver(writer, format)
	start := time.Now()

	var result searchDomain.SyncResult
	if len(ids) == 0 {
		var err error
		result, err = syncUseCase.SyncAll(ctx, observer)
		if err != nil {
			return fmt.Errorf("failed to reindex: %w", err)
		}
	} else {
		result = syncUseCase.SyncMany(ctx, ids, observer)
	}

	logger.Info("reindex finished",
		slog.Int("synced", result.Synced),
		slog.Int("failed", result.Failed),
		slog.Int("total", result.Total),
		slog.Duration("duration", time.Since(start)),
	)

	if err := outputSyncResult(writer, format, result); err != nil {
		return err
	}
	if result.State == searchDomain.SyncFailed {
		return fmt.Errorf("reindex failed: %d of %d documents indexed", result.Synced, result.Total)
	}
	return nil
}

// RunRecreateIndex drops the index, creates it again and reindexes every item.
func RunRecreateIndex(
	ctx context.Context,
	syncUseCase searchUseCase.SyncUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Warn("recreating index, searches return partial results until the reindex completes")

	result, err := syncUseCase.RecreateIndex(ctx, progressObserver(writer, format))
	if err != nil {
		return fmt.Errorf("failed to recreate index: %w", err)
	}

	if err := outputSyncResult(writer, format, result); err != nil {
		return err
	}
	if result.State == searchDomain.SyncFailed {
		return fmt.Errorf("recreate failed: %d of %d documents indexed", result.Synced, result.Total)
	}
	return nil
}

// RunTestConnection checks the search backend and prints the outcome. An
// unreachable backend fails the command.
func RunTestConnection(
	ctx context.Context,
	syncUseCase searchUseCase.SyncUseCase,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	status := syncUseCase.TestConnection(ctx)

	if format == FormatJSON {
		if err := writeJSON(writer, status); err != nil {
			return err
		}
	} else if err := outputStatusText(writer, status); err != nil {
		return err
	}

	if !status.Connected {
		return fmt.Errorf("search backend %s is unreachable", status.Backend)
	}
	return nil
}

// progressObserver prints progress changes and log lines in text format. JSON
// output only carries the final result.
func progressObserver(writer io.Writer, format string) searchDomain.SyncObserver {
	if format == FormatJSON {
		return searchDomain.SyncObserver{}
	}

	last := -1
	return searchDomain.SyncObserver{
		OnProgress: func(percent int) {
			if percent == last {
				return
			}
			last = percent
			_, _ = fmt.Fprintf(writer, "progress: %d%%\n", percent)
		},
		OnLog: func(message string) {
			_, _ = fmt.Fprintln(writer, message)
		},
	}
}

func outputSyncResult(writer io.Writer, format string, result searchDomain.SyncResult) error {
	if format == FormatJSON {
		return writeJSON(writer, result)
	}

	if _, err := fmt.Fprintf(writer, "Indexed %d of %d item(s), %d failed (%s)\n",
		result.Synced, result.Total, result.Failed, result.State); err != nil {
		return err
	}
	if len(result.FailedIDs) > 0 {
		_, err := fmt.Fprintf(writer, "Failed item ids: %v\n", result.FailedIDs)
		return err
	}
	return nil
}

func outputStatusText(writer io.Writer, status index.Status) error {
	if status.Connected {
		_, err := fmt.Fprintf(writer, "Connected to %s\n", status.Backend)
		return err
	}
	_, err := fmt.Fprintf(writer, "Cannot reach %s: %s\n", status.Backend, status.LastError)
	return err
}
