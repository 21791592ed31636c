package analyzer

import (
	"fmt"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/events"
)

// NewGate creates the click gate for the configured activation mode.
func NewGate(cfg config.SmartCameraConfig) (Gate, error) {
	g := &windowGate{
		windowMs:   max(cfg.ActivationWindowMs, 1),
		minClicks:  max(cfg.MinClicksToActivate, 1),
		rapidGapMs: max(cfg.ClickClusterGapMs, 1),
	}
	switch cfg.ActivationMode {
	case config.ModeSingleClick, config.ModeMultiClickWindow, "":
		return g, nil
	case config.ModeCtrlClick:
		g.ctrlOnly = true
		return g, nil
	default:
		return nil, fmt.Errorf("unknown activation mode: %s", cfg.ActivationMode)
	}
}

// Clusters runs the gate and merges the surviving clicks into clusters.
func Clusters(gate Gate, evs []events.InputEvent, gapMs int64) []FocusCluster {
	return ClusterClicks(gate.Select(evs), max(gapMs, 1))
}

type windowGate struct {
	windowMs   int64
	minClicks  int
	rapidGapMs int64
	ctrlOnly   bool
}

func (g *windowGate) Select(evs []events.InputEvent) []FocusClick {
	var clicks []FocusClick
	if g.ctrlOnly {
		clicks = CtrlClicks(evs)
	} else {
		clicks = FocusClicks(evs)
	}
	return GateByActivationWindow(clicks, g.windowMs, g.minClicks, g.rapidGapMs)
}
