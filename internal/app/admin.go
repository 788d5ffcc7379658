package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/bounceland/internal/adapters/repository"
	"github.com/okian/bounceland/internal/domain/attendance"
	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/meal"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/tabular"
	"github.com/okian/bounceland/internal/domain/types"
	"github.com/okian/bounceland/pkg/logger"
	"github.com/okian/bounceland/pkg/metrics"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const backupTimeLayout = "20060102-150405"

// errNothingAdded skips the save of an import that found only known users.
var errNothingAdded = errors.New("nothing added")

// Export renders the current dataset as a table in format.
func (s *Service) Export(ctx context.Context, format string) ([]byte, error) {
	ds := s.attendance.Snapshot()

	var buf bytes.Buffer
	switch format {
	case "", FormatCSV:
		format = FormatCSV
		if err := tabular.WriteCSV(&buf, ds); err != nil {
			return nil, fmt.Errorf("export csv: %w", err)
		}
	case FormatXLSX:
		if err := tabular.WriteXLSX(&buf, ds); err != nil {
			return nil, fmt.Errorf("export xlsx: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	metrics.RecordExport(format)
	s.logger.Info(ctx, "dataset exported", logger.String("format", format), logger.Int("users", len(ds.Users)))
	return buf.Bytes(), nil
}

// Import adds the users of a CSV or XLSX table. Users already present are
// skipped and left unchanged. An unreadable table applies nothing.
func (s *Service) Import(ctx context.Context, caller string, r io.Reader) (types.ImportResponse, error) {
	if err := s.authorize(caller); err != nil {
		return types.ImportResponse{}, err
	}
	table, err := tabular.ReadTable(r)
	if err != nil {
		return types.ImportResponse{}, err
	}

	s.bouncelandWrites.Lock()
	defer s.bouncelandWrites.Unlock()

	var res tabular.Result
	err = s.stageBounceland(ctx, func(st *attendance.Store) error {
		var err error
		res, err = tabular.Import(st, table)
		if err == nil && res.Added == 0 {
			return errNothingAdded
		}
		return err
	})
	switch {
	case errors.Is(err, errNothingAdded):
	case err != nil:
		return types.ImportResponse{}, err
	default:
		s.afterBounceland(ctx, caller, "import")
	}

	metrics.RecordImportRows("added", res.Added)
	metrics.RecordImportRows("skipped", res.Skipped)
	s.logger.Info(ctx, "import completed", logger.Int("added", res.Added), logger.Int("skipped", res.Skipped))
	return types.ImportResponse{Added: res.Added, Skipped: res.Skipped}, nil
}

// Reset backs the dataset up as CSV and replaces it with an empty dataset for
// the current season. It returns the backup. Nothing is replaced unless the
// backup was stored.
func (s *Service) Reset(ctx context.Context, caller string) ([]byte, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}

	s.bouncelandWrites.Lock()
	defer s.bouncelandWrites.Unlock()

	backup, err := tabular.CSV(s.attendance.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}
	name := fmt.Sprintf("%s-%s.csv", repository.KeyBounceland, time.Now().UTC().Format(backupTimeLayout))
	if err := s.documents.SaveBackup(ctx, name, backup); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}

	weekIDs := s.calendar.SeasonWeekIDs()
	fresh := model.NewDataset(weekIDs)
	if err := s.documents.Save(ctx, repository.KeyBounceland, fresh); err != nil {
		return nil, fmt.Errorf("save reset dataset: %w", err)
	}
	s.attendance.Restore(fresh, weekIDs)

	metrics.RecordReset()
	s.afterBounceland(ctx, caller, "reset")
	s.logger.Info(ctx, "bounceland data reset", logger.String("backup", name))
	return backup, nil
}

// PostBounceland posts a new live Bounceland message.
func (s *Service) PostBounceland(ctx context.Context, caller string) (types.PostResponse, error) {
	if err := s.authorize(caller); err != nil {
		return types.PostResponse{}, err
	}
	return s.post(ctx, model.PollBounceland)
}

// PostMeal starts next week's meal poll on behalf of caller.
func (s *Service) PostMeal(ctx context.Context, caller string) (types.PostResponse, error) {
	if err := s.authorize(caller); err != nil {
		return types.PostResponse{}, err
	}
	return s.PostMealPoll(ctx)
}

// PostMealPoll replaces the meal poll with an empty one for next week and
// posts it. The scheduler calls it weekly.
func (s *Service) PostMealPoll(ctx context.Context) (types.PostResponse, error) {
	s.mealWrites.Lock()
	fresh := meal.Fresh(calendar.NextWeekDays(s.calendar.Today()))
	if err := s.documents.Save(ctx, repository.KeyMeal, fresh); err != nil {
		s.mealWrites.Unlock()
		return types.PostResponse{}, fmt.Errorf("save meal poll: %w", err)
	}
	s.meal.Restore(fresh)
	s.updateMealMetrics()
	s.mealWrites.Unlock()

	return s.post(ctx, model.PollMeal)
}

func (s *Service) post(ctx context.Context, poll model.Poll) (types.PostResponse, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return types.PostResponse{}, ErrNotStarted
	}

	u, err := s.Render(ctx, poll)
	if err != nil {
		return types.PostResponse{}, err
	}
	id, err := s.live.Post(ctx, u)
	if err != nil {
		return types.PostResponse{}, err
	}
	return types.PostResponse{Poll: string(poll), MessageID: id}, nil
}
