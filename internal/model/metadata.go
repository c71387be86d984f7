package model

// Metrics holds the three regression error metrics reported for a model,
// rounded to 4 decimals.
type Metrics struct {
	RMSE float64 `json:"RMSE"`
	R2   float64 `json:"R2"`
	MAPE float64 `json:"MAPE"`
}

// Metadata is the persisted contract binding a trained model to the exact
// feature-matrix shape it was fit on. It is created once per training run and
// immutable afterward; every inference or evaluation call re-encodes its
// input against FeaturesUsed, in order, filling missing columns with zero.
type Metadata struct {
	ModelType       string             `json:"model_type"`
	TrainedOn       string             `json:"trained_on"` // "2006-01-02 15:04"
	Metrics         Metrics            `json:"metrics"`
	FeaturesUsed    []string           `json:"features_used"`
	Hyperparameters map[string]float64 `json:"hyperparameters"`
	User            string             `json:"user"`
	Version         string             `json:"version"`
}
