// Package tracking provides a local experiment tracking store.
//
// Runs, their parameters, and their metrics persist in a single bbolt file
// next to the session warehouse. The store is the local stand-in for a
// remote tracking server: sessions record which datasets and models each
// run produced, and tests use throwaway stores under t.TempDir.
package tracking

import (
	"sort"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/visionlake/geocol/pkg/errors"
)

var runsBucket = []byte("runs")

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	// StatusRunning marks a run that has started and not finished
	StatusRunning RunStatus = "running"
	// StatusFinished marks a run that completed successfully
	StatusFinished RunStatus = "finished"
	// StatusFailed marks a run that completed with an error
	StatusFailed RunStatus = "failed"
)

// Run is one tracked experiment run.
type Run struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Status    RunStatus          `json:"status"`
	StartTime time.Time          `json:"start_time"`
	EndTime   time.Time          `json:"end_time,omitempty"`
	Params    map[string]string  `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
	Tags      map[string]string  `json:"tags,omitempty"`
}

// Store is a bbolt-backed tracking store. All methods are safe for
// concurrent use; bbolt serializes writers internally.
type Store struct {
	db     *bolt.DB
	logger *zap.Logger
}

// Open opens (or creates) a tracking store at the given path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to open tracking store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to initialize tracking store")
	}
	logger.Debug("tracking store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun starts a new run with the given name.
func (s *Store) CreateRun(name string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    StatusRunning,
		StartTime: time.Now().UTC(),
		Params:    make(map[string]string),
		Metrics:   make(map[string]float64),
	}
	if err := s.putRun(run); err != nil {
		return nil, err
	}
	s.logger.Info("run created", zap.String("run_id", run.ID), zap.String("name", name))
	return run, nil
}

// GetRun loads a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	var run *Run
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(runsBucket).Get([]byte(id))
		if data == nil {
			return errors.Newf(errors.ErrorTypeNotFound, "run %s not found", id)
		}
		run = &Run{}
		return gojson.Unmarshal(data, run)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns all runs ordered by start time.
func (s *Store) ListRuns() ([]*Run, error) {
	var runs []*Run
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(_, data []byte) error {
			run := &Run{}
			if err := gojson.Unmarshal(data, run); err != nil {
				return err
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to list runs")
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartTime.Before(runs[j].StartTime) })
	return runs, nil
}

// LogParam records a parameter on a run.
func (s *Store) LogParam(runID, key, value string) error {
	return s.updateRun(runID, func(run *Run) {
		if run.Params == nil {
			run.Params = make(map[string]string)
		}
		run.Params[key] = value
	})
}

// LogMetric records a metric on a run, overwriting any previous value.
func (s *Store) LogMetric(runID, key string, value float64) error {
	return s.updateRun(runID, func(run *Run) {
		if run.Metrics == nil {
			run.Metrics = make(map[string]float64)
		}
		run.Metrics[key] = value
	})
}

// SetTag records a tag on a run.
func (s *Store) SetTag(runID, key, value string) error {
	return s.updateRun(runID, func(run *Run) {
		if run.Tags == nil {
			run.Tags = make(map[string]string)
		}
		run.Tags[key] = value
	})
}

// FinishRun marks a run finished or failed and stamps its end time.
func (s *Store) FinishRun(runID string, status RunStatus) error {
	if status != StatusFinished && status != StatusFailed {
		return errors.Newf(errors.ErrorTypeValidation, "invalid terminal status %q", status)
	}
	return s.updateRun(runID, func(run *Run) {
		run.Status = status
		run.EndTime = time.Now().UTC()
	})
}

func (s *Store) putRun(run *Run) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := gojson.Marshal(run)
		if err != nil {
			return err
		}
		return tx.Bucket(runsBucket).Put([]byte(run.ID), data)
	})
}

func (s *Store) updateRun(runID string, mutate func(*Run)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(runsBucket)
		data := bucket.Get([]byte(runID))
		if data == nil {
			return errors.Newf(errors.ErrorTypeNotFound, "run %s not found", runID)
		}
		run := &Run{}
		if err := gojson.Unmarshal(data, run); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "corrupt run record")
		}
		mutate(run)
		updated, err := gojson.Marshal(run)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(runID), updated)
	})
}
