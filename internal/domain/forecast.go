package domain

// Forecast is a model-free projection of the metrics WindowSeconds ahead.
type Forecast struct {
	WindowSeconds     int     `json:"window_seconds"`
	PredictedCPU      float64 `json:"predicted_cpu"`
	PredictedMemory   float64 `json:"predicted_memory"`
	PredictedTraffic  float64 `json:"predicted_traffic"`
	ConfidencePercent float64 `json:"confidence_percent"`
}
