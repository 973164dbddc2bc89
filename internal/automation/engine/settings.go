package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rsned/pokeclicker-automation-server/pkg/automation"
)

// SetSetting executes the set_setting tool logic. Settings are stored so they
// survive restarts.
func (e *Engine) SetSetting(ctx context.Context, req automation.SetSettingRequest) (*automation.SetSettingResponse, error) {
	if err := e.applySetting(req.Key, req.Value); err != nil {
		return nil, err
	}
	if err := e.settings.Set(ctx, req.Key, req.Value); err != nil {
		return nil, err
	}

	e.logger.Info("setting changed", "key", req.Key, "value", req.Value)
	return &automation.SetSettingResponse{Key: req.Key, Value: req.Value}, nil
}

func (e *Engine) applySetting(key, value string) error {
	switch key {
	case automation.SettingAllowBeastBall:
		allow, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		e.state.SetAllowBeastBall(allow)
	case automation.SettingSkipShinyVitamins:
		skip, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		e.state.SetSkipShinyVitamins(skip)
	case automation.SettingAutoVitamins:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		e.setAutoVitamins(enabled)
	case automation.SettingPokeball:
		ball := automation.Pokeball(value)
		if !ball.IsValid() || ball == automation.PokeballNone {
			return fmt.Errorf("unknown pokeball %q", value)
		}
		e.state.SetPokeball(ball)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
