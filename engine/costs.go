package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// PowerUpCosts is the price list a game is created with.
type PowerUpCosts struct {
	ExtraLife      float64 `json:"extra_life"`
	AddLength      float64 `json:"add_length"`
	Revive         float64 `json:"revive"`
	ShrinkOpponent float64 `json:"shrink_opponent"`
	FreezeOpponent float64 `json:"freeze_opponent"`
}

func DefaultCosts() PowerUpCosts {
	return PowerUpCosts{
		ExtraLife:      5,
		AddLength:      1,
		Revive:         10,
		ShrinkOpponent: 3,
		FreezeOpponent: 5,
	}
}

func (c PowerUpCosts) Cost(p PowerUp) float64 {
	switch p.Kind {
	case ExtraLife:
		return c.ExtraLife
	case AddLength:
		return c.AddLength
	case ShrinkOpponent:
		return c.ShrinkOpponent
	case FreezeOpponent:
		return c.FreezeOpponent
	case Revive:
		return c.Revive
	}
	return 0
}

// LoadCosts reads a JSON cost file; keys it omits keep their default.
func LoadCosts(path string) (PowerUpCosts, error) {
	costs := DefaultCosts()
	data, err := os.ReadFile(path)
	if err != nil {
		return costs, err
	}
	if err := json.Unmarshal(data, &costs); err != nil {
		return DefaultCosts(), fmt.Errorf("parse %s: %w", path, err)
	}
	return costs, nil
}

// CostWatcher holds the current cost table and reloads it whenever the file
// on disk changes. Games copy the table when they are created.
type CostWatcher struct {
	path string

	mu    sync.RWMutex
	costs PowerUpCosts
}

// NewCostWatcher loads path once. A missing file is not an error: the
// defaults stay in effect until the file appears.
func NewCostWatcher(path string) (*CostWatcher, error) {
	w := &CostWatcher{path: path, costs: DefaultCosts()}
	costs, err := LoadCosts(path)
	switch {
	case err == nil:
		w.costs = costs
	case os.IsNotExist(err):
		log.Printf("[COSTS] %s not found, using defaults", path)
	default:
		return nil, err
	}
	return w, nil
}

func (w *CostWatcher) Current() PowerUpCosts {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.costs
}

func (w *CostWatcher) reload() {
	costs, err := LoadCosts(w.path)
	if err != nil {
		log.Printf("[COSTS] reload failed, keeping previous table: %v", err)
		return
	}
	w.mu.Lock()
	w.costs = costs
	w.mu.Unlock()
	log.Printf("[COSTS] reloaded %s: %+v", w.path, costs)
}

// Watch blocks, reloading the table on every write to the file, until done
// is closed. The directory is watched so editors that replace the file by
// rename are picked up too.
func (w *CostWatcher) Watch(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	target := filepath.Clean(w.path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[COSTS] watcher error: %v", err)
		case <-done:
			return nil
		}
	}
}
