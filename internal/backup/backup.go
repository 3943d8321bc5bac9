// Package backup runs the periodic database backup: snapshot the store,
// optionally compress, prune old artifacts and deliver the newest one.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"weightbot/internal/domain"
)

const (
	filePrefix = "weight_backup_"
	dbExt      = ".db"
	zstExt     = ".zst"
	stampFmt   = "20060102_150405"
)

// ErrDelivery is returned by RunOnce when the artifact was written but could
// not be delivered. The local file is kept.
var ErrDelivery = errors.New("backup delivery failed")

// Snapshotter writes a consistent copy of the store to dst.
type Snapshotter interface {
	Snapshot(ctx context.Context, dst string) error
}

// Sink ships a finished artifact somewhere outside the host.
type Sink interface {
	Deliver(ctx context.Context, a Artifact) error
}

// Artifact is one finished backup file.
type Artifact struct {
	Path      string
	Size      int64
	CreatedAt time.Time
	Caption   string
}

// Name returns the base file name.
func (a Artifact) Name() string {
	return filepath.Base(a.Path)
}

// Config holds the job settings.
type Config struct {
	Interval time.Duration
	Dir      string
	Keep     int
	Compress bool
}

// Job is the single periodic backup task. Every backup variant (interval,
// target, delivery) is a Config plus an optional Sink.
type Job struct {
	cfg     Config
	store   Snapshotter
	sink    Sink
	caption func(ctx context.Context) (string, error)
	log     *zap.Logger
	cb      *gobreaker.CircuitBreaker
	now     func() time.Time

	// mu serializes RunOnce between the ticker and on-demand runs.
	mu sync.Mutex
}

// New creates a Job. sink may be nil for local-only backups.
func New(cfg Config, store Snapshotter, sink Sink, log *zap.Logger) *Job {
	if cfg.Keep <= 0 {
		cfg.Keep = 7
	}
	if cfg.Dir == "" {
		cfg.Dir = "backups"
	}
	log = log.With(zap.String("component", "backup"))

	st := gobreaker.Settings{
		Name:        "backup-delivery",
		MaxRequests: 1,
		Timeout:     30 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Job{
		cfg:   cfg,
		store: store,
		sink:  sink,
		log:   log,
		cb:    gobreaker.NewCircuitBreaker(st),
		now:   time.Now,
	}
}

// WithCaption sets the function producing the delivery caption, typically a
// short store summary.
func (j *Job) WithCaption(fn func(ctx context.Context) (string, error)) *Job {
	j.caption = fn
	return j
}

// WithClock replaces the clock used to name artifacts.
func (j *Job) WithClock(now func() time.Time) *Job {
	j.now = now
	return j
}

// Run performs a backup every Interval until ctx is cancelled. Failures are
// logged and the loop keeps going.
func (j *Job) Run(ctx context.Context) error {
	if j.cfg.Interval <= 0 {
		return fmt.Errorf("backup: interval must be positive, got %s", j.cfg.Interval)
	}
	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	j.log.Info("backup loop started", zap.Duration("interval", j.cfg.Interval), zap.String("dir", j.cfg.Dir))
	for {
		select {
		case <-ctx.Done():
			j.log.Info("backup loop stopped")
			return nil
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				j.log.Error("scheduled backup failed", zap.Error(err))
			}
		}
	}
}

// RunOnce creates one artifact, prunes old ones and delivers it. On a
// delivery failure the artifact is returned together with an error wrapping
// ErrDelivery.
func (j *Job) RunOnce(ctx context.Context) (*Artifact, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	created := j.now()
	path, err := freePath(j.cfg.Dir, filePrefix+domain.Civil(created).Format(stampFmt))
	if err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	if err := j.store.Snapshot(ctx, path); err != nil {
		// path was free before the snapshot, so anything there is partial.
		_ = os.Remove(path)
		return nil, fmt.Errorf("backup: snapshot: %w", err)
	}
	if j.cfg.Compress {
		zpath := path + zstExt
		if err := compressFile(path, zpath); err != nil {
			_ = os.Remove(zpath)
			return nil, fmt.Errorf("backup: compress: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("backup: %w", err)
		}
		path = zpath
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	art := &Artifact{Path: path, Size: fi.Size(), CreatedAt: created.UTC()}
	j.log.Info("backup created", zap.String("path", path), zap.Int64("bytes", art.Size))

	if removed, err := Prune(j.cfg.Dir, j.cfg.Keep); err != nil {
		j.log.Warn("prune failed", zap.Error(err))
	} else if len(removed) > 0 {
		j.log.Info("old backups removed", zap.Strings("files", removed))
	}

	if j.sink == nil {
		return art, nil
	}
	if j.caption != nil {
		if art.Caption, err = j.caption(ctx); err != nil {
			j.log.Warn("backup caption unavailable", zap.Error(err))
		}
	}
	_, err = j.cb.Execute(func() (interface{}, error) {
		return nil, j.sink.Deliver(ctx, *art)
	})
	if err != nil {
		return art, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	j.log.Info("backup delivered", zap.String("file", art.Name()))
	return art, nil
}

// Prune keeps the newest keep backup files in dir and removes the rest,
// returning the removed names. Other files are left alone.
func Prune(dir string, keep int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !isBackupName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) <= keep {
		return nil, nil
	}
	// The timestamp in the name sorts lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var removed []string
	for _, name := range names[keep:] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// maxSameSecond bounds the _NN suffixes tried for one timestamp.
const maxSameSecond = 99

// freePath returns a .db path in dir for stem that collides with no existing
// artifact, compressed or not. Later runs in the same second get a two-digit
// suffix so names keep sorting by creation order.
func freePath(dir, stem string) (string, error) {
	for n := 0; n <= maxSameSecond; n++ {
		name := stem
		if n > 0 {
			name = fmt.Sprintf("%s_%02d", stem, n)
		}
		path := filepath.Join(dir, name+dbExt)
		taken, err := exists(path)
		if err != nil {
			return "", err
		}
		if !taken {
			if taken, err = exists(path + zstExt); err != nil {
				return "", err
			}
		}
		if !taken {
			return path, nil
		}
	}
	return "", fmt.Errorf("too many backups named %s", stem)
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func isBackupName(name string) bool {
	if !strings.HasPrefix(name, filePrefix) {
		return false
	}
	return strings.HasSuffix(name, dbExt) || strings.HasSuffix(name, dbExt+zstExt)
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return err
	}
	if _, err := io.Copy(enc, in); err != nil {
		_ = enc.Close()
		_ = out.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Decompress restores a .db.zst artifact to dst.
func Decompress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := zstd.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, zr); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
