package subscription

// Indicator IDs returned to the owning layer for rechecking.
const (
	IndicatorScreenSelected   = "screen_selected"
	IndicatorLayerSelected    = "layer_selected"
	IndicatorScreenLocked     = "screen_locked"
	IndicatorScreenEnabled    = "screen_enabled"
	IndicatorTransitionSeated = "transition_seated"
	IndicatorMemoryOnProgram  = "memory_on_program"
	IndicatorMemoryOnPreview  = "memory_on_preview"
	IndicatorInputSignal      = "input_signal"
	IndicatorLayerSource      = "layer_source"
)

// ScreenOutput names a derived output of a screen, e.g. "screen_S1_label".
func ScreenOutput(screen, field string) string {
	return "screen_" + screen + "_" + field
}

// MasterMemoryLabelOutput names the label output of a master memory.
func MasterMemoryLabelOutput(n string) string {
	return "master_memory_" + n + "_label"
}
