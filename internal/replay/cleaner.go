package replay

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"shootingrange/rangesim/internal/logging"
)

// RetentionPolicy defines how many replay sessions are retained on disk.
type RetentionPolicy struct {
	MaxSessions int
	MaxAge      time.Duration
}

// StorageStats summarises the disk footprint of persisted replays.
type StorageStats struct {
	Sessions  int       `json:"sessions"`
	Complete  int       `json:"complete"`
	Bytes     int64     `json:"bytes"`
	Removed   int       `json:"removed"`
	LastSweep time.Time `json:"last_sweep"`
}

// Cleaner periodically prunes replay sessions according to a retention policy.
// The session currently being written is never removed.
type Cleaner struct {
	mu      sync.RWMutex
	dir     string
	policy  RetentionPolicy
	log     *logging.Logger
	now     func() time.Time
	stats   StorageStats
	protect map[string]struct{}
}

// NewCleaner constructs a cleaner for the provided replay directory.
func NewCleaner(dir string, policy RetentionPolicy, logger *logging.Logger) *Cleaner {
	if logger == nil {
		logger = logging.L()
	}
	return &Cleaner{
		dir:     dir,
		policy:  policy,
		log:     logger.With(logging.String("component", "replay_cleaner")),
		now:     time.Now,
		protect: make(map[string]struct{}),
	}
}

// Protect exempts a session directory from removal.
func (c *Cleaner) Protect(session string) {
	if c == nil || session == "" {
		return
	}
	c.mu.Lock()
	c.protect[session] = struct{}{}
	c.mu.Unlock()
}

// Run executes retention sweeps until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context, interval time.Duration) {
	if c == nil || ctx == nil {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	//1.- Perform an eager sweep so retention applies immediately on startup.
	c.sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			//2.- Trigger periodic sweeps while the context remains active.
			c.sweep()
		}
	}
}

// RunOnce performs a single retention sweep, primarily used for tests.
func (c *Cleaner) RunOnce() {
	if c == nil {
		return
	}
	//1.- Delegate to sweep so tests exercise identical logic as the background loop.
	c.sweep()
}

// Stats returns the last recorded storage statistics.
func (c *Cleaner) Stats() StorageStats {
	if c == nil {
		return StorageStats{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	//1.- Return a copy so callers cannot mutate internal state.
	return c.stats
}

type session struct {
	name     string
	path     string
	size     int64
	modTime  time.Time
	complete bool
}

func (c *Cleaner) sweep() {
	if c == nil || strings.TrimSpace(c.dir) == "" {
		return
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.log.Warn("replay retention scan failed", logging.Error(err), logging.String("directory", c.dir))
		return
	}
	sessions := c.collect(entries)
	now := c.now()
	kept := 0
	stats := StorageStats{LastSweep: now}

	c.mu.RLock()
	protected := make(map[string]struct{}, len(c.protect))
	for name := range c.protect {
		protected[name] = struct{}{}
	}
	c.mu.RUnlock()

	for _, sess := range sessions {
		_, active := protected[sess.name]
		if remove, reasons := c.shouldRemove(sess, now, kept); remove && !active {
			if err := os.RemoveAll(sess.path); err != nil {
				c.log.Warn("replay retention removal failed", logging.Error(err), logging.String("session", sess.name))
			} else {
				c.log.Info("replay retention removed session", logging.String("session", sess.name), logging.String("reason", reasons))
				stats.Removed++
				continue
			}
		}
		kept++
		stats.Sessions++
		stats.Bytes += sess.size
		if sess.complete {
			stats.Complete++
		}
	}
	c.mu.Lock()
	//1.- Publish the refreshed statistics so metrics handlers can report storage usage.
	c.stats = stats
	c.mu.Unlock()
}

func (c *Cleaner) collect(entries []os.DirEntry) []*session {
	list := make([]*session, 0, len(entries))
	for _, entry := range entries {
		//1.- Only directories carrying a header are sessions; stray files are left alone.
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		header, err := os.Stat(filepath.Join(path, headerFile))
		if err != nil {
			continue
		}
		size, modTime, err := directoryUsage(path)
		if err != nil {
			c.log.Warn("replay retention size failed", logging.Error(err), logging.String("path", path))
			continue
		}
		if header.ModTime().After(modTime) {
			modTime = header.ModTime()
		}
		_, manifestErr := os.Stat(filepath.Join(path, manifestFile))
		list = append(list, &session{
			name:     entry.Name(),
			path:     path,
			size:     size,
			modTime:  modTime,
			complete: manifestErr == nil,
		})
	}
	//2.- Sort newest-first so retention limits favour recent sessions.
	sort.Slice(list, func(i, j int) bool { return list[i].modTime.After(list[j].modTime) })
	return list
}

func (c *Cleaner) shouldRemove(sess *session, now time.Time, kept int) (bool, string) {
	reasons := make([]string, 0, 2)
	if c.policy.MaxAge > 0 && now.Sub(sess.modTime) > c.policy.MaxAge {
		//1.- Flag sessions that exceeded the configured age budget.
		reasons = append(reasons, fmt.Sprintf("age>%s", c.policy.MaxAge))
	}
	if c.policy.MaxSessions > 0 && kept >= c.policy.MaxSessions {
		//2.- Enforce the maximum retained session count after accounting for age removals.
		reasons = append(reasons, fmt.Sprintf(">=%d sessions", c.policy.MaxSessions))
	}
	return len(reasons) > 0, strings.Join(reasons, ", ")
}

// directoryUsage sums file sizes and finds the newest modification below root.
func directoryUsage(root string) (int64, time.Time, error) {
	var total int64
	var newest time.Time
	walkErr := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return total, newest, walkErr
}
