package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ---------------------------------------------------------------------------
// Game configuration (configurable via config file)
// ---------------------------------------------------------------------------

type Config struct {
	TickMillis       int   `json:"tick_ms"`
	BoardWidth       int   `json:"board_width"`
	BoardHeight      int   `json:"board_height"`
	AppleTarget      int   `json:"apple_target"`
	AppleAttempts    int   `json:"apple_attempts"`
	MoveEveryTicks   int   `json:"move_every_ticks"`
	ReviveTicks      int   `json:"revive_ticks"`
	StatusMillis     int   `json:"status_ms"`
	StartLength      int   `json:"start_length"`
	AppleGrowth      int   `json:"apple_growth"`
	AddLength        int   `json:"add_length"`
	ShrinkAmount     int   `json:"shrink_amount"`
	MinLength        int   `json:"min_length"`
	InboxSize        int   `json:"inbox_size"`
	BroadcastBuffer  int   `json:"broadcast_buffer"` // events per player a connection may lag behind
	FinishedTTLSec   int   `json:"finished_ttl_sec"`
	EvictIntervalSec int   `json:"evict_interval_sec"`
	Seed             int64 `json:"seed"`
}

func DefaultConfig() Config {
	return Config{
		TickMillis:       100,
		BoardWidth:       100,
		BoardHeight:      50,
		AppleTarget:      40,
		AppleAttempts:    5,
		MoveEveryTicks:   1,
		ReviveTicks:      100,
		StatusMillis:     3000,
		StartLength:      3,
		AppleGrowth:      2,
		AddLength:        10,
		ShrinkAmount:     10,
		MinLength:        3,
		InboxSize:        100,
		BroadcastBuffer:  256,
		FinishedTTLSec:   300,
		EvictIntervalSec: 30,
	}
}

// withDefaults repairs a config before a game or registry uses it. The zero
// Config means "no config" and becomes DefaultConfig. Otherwise every
// non-positive field is filled from the defaults, except AppleTarget and
// FinishedTTLSec, where an explicit zero means no apples and no eviction.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c == (Config{}) {
		return d
	}
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&c.TickMillis, d.TickMillis)
	fill(&c.BoardWidth, d.BoardWidth)
	fill(&c.BoardHeight, d.BoardHeight)
	fill(&c.AppleAttempts, d.AppleAttempts)
	fill(&c.MoveEveryTicks, d.MoveEveryTicks)
	fill(&c.ReviveTicks, d.ReviveTicks)
	fill(&c.StatusMillis, d.StatusMillis)
	fill(&c.StartLength, d.StartLength)
	fill(&c.AppleGrowth, d.AppleGrowth)
	fill(&c.AddLength, d.AddLength)
	fill(&c.ShrinkAmount, d.ShrinkAmount)
	fill(&c.MinLength, d.MinLength)
	fill(&c.InboxSize, d.InboxSize)
	fill(&c.BroadcastBuffer, d.BroadcastBuffer)
	fill(&c.EvictIntervalSec, d.EvictIntervalSec)
	if c.AppleTarget < 0 {
		c.AppleTarget = d.AppleTarget
	}
	if c.FinishedTTLSec < 0 {
		c.FinishedTTLSec = 0
	}
	return c
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// StatusTicks is the freeze / invulnerability window expressed in ticks.
func (c Config) StatusTicks() int {
	return c.StatusMillis / c.TickMillis
}

func (c Config) Board() Board {
	return Board{Width: c.BoardWidth, Height: c.BoardHeight}
}

func (c Config) FinishedTTL() time.Duration {
	return time.Duration(c.FinishedTTLSec) * time.Second
}

func (c Config) EvictInterval() time.Duration {
	return time.Duration(c.EvictIntervalSec) * time.Second
}

// LoadConfig reads a JSON config file over DefaultConfig. A missing file is
// created with the defaults so it can be edited later.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, saveConfig(path, cfg)
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

func saveConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
