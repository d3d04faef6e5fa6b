package engine

import (
	"fmt"

	"github.com/arbiter-social/arbiter/moderation/analyzer"
)

// Partial settings update. Nil fields leave the corresponding setting
// untouched; unknown JSON keys are ignored by decoding into this struct.
type SettingsPatch struct {
	FlagThreshold               *float64 `json:"flagThreshold,omitempty"`
	EnableToxicityDetection     *bool    `json:"enableToxicityDetection,omitempty"`
	EnableSpamDetection         *bool    `json:"enableSpamDetection,omitempty"`
	EnableProfanityFilter       *bool    `json:"enableProfanityFilter,omitempty"`
	EnableThreatDetection       *bool    `json:"enableThreatDetection,omitempty"`
	EnablePersonalInfoDetection *bool    `json:"enablePersonalInfoDetection,omitempty"`
}

func (eng *Engine) GetSettings() analyzer.Settings {
	eng.settingsMu.RLock()
	defer eng.settingsMu.RUnlock()
	return eng.settings
}

// UpdateSettings merges the patch over the current settings and returns the
// result. A flag threshold outside [0,1] is rejected without applying any
// part of the patch.
func (eng *Engine) UpdateSettings(patch SettingsPatch) (analyzer.Settings, error) {
	if patch.FlagThreshold != nil && (*patch.FlagThreshold < 0 || *patch.FlagThreshold > 1) {
		return analyzer.Settings{}, fmt.Errorf("flagThreshold must be within [0,1], got %f", *patch.FlagThreshold)
	}

	eng.settingsMu.Lock()
	defer eng.settingsMu.Unlock()

	if patch.FlagThreshold != nil {
		eng.settings.FlagThreshold = *patch.FlagThreshold
	}
	if patch.EnableToxicityDetection != nil {
		eng.settings.EnableToxicityDetection = *patch.EnableToxicityDetection
	}
	if patch.EnableSpamDetection != nil {
		eng.settings.EnableSpamDetection = *patch.EnableSpamDetection
	}
	if patch.EnableProfanityFilter != nil {
		eng.settings.EnableProfanityFilter = *patch.EnableProfanityFilter
	}
	if patch.EnableThreatDetection != nil {
		eng.settings.EnableThreatDetection = *patch.EnableThreatDetection
	}
	if patch.EnablePersonalInfoDetection != nil {
		eng.settings.EnablePersonalInfoDetection = *patch.EnablePersonalInfoDetection
	}

	// cached analysis results were computed under the old settings
	if eng.resultCache != nil {
		eng.resultCache.Purge()
	}
	eng.Logger.Info("moderation settings updated", "flagThreshold", eng.settings.FlagThreshold)
	return eng.settings, nil
}
