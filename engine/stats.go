package engine

import (
	"fmt"
	"math"
	"time"
)

type RegistryStats struct {
	Games       int `json:"games"`
	Waiting     int `json:"waiting"`
	Playing     int `json:"playing"`
	Finished    int `json:"finished"`
	Halted      int `json:"halted"`
	Connections int `json:"connections"`
}

func (r *Registry) Stats() RegistryStats {
	var s RegistryStats
	for _, e := range r.List() {
		s.Games++
		switch e.Game.Phase() {
		case PhaseWaiting:
			s.Waiting++
		case PhasePlaying:
			s.Playing++
		case PhaseFinished:
			s.Finished++
		}
		if e.Game.Halted() != nil {
			s.Halted++
		}
		s.Connections += e.Game.hub.Subscribers()
	}
	return s
}

type StatsSnapshot struct {
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptimeSec"`
	RegistryStats
	Router RouterStats `json:"router"`
	List   []GameStats `json:"list"`
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

func roundMs(ms float64) float64 {
	return math.Round(ms*100) / 100
}
