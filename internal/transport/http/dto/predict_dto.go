package dto

import "time"

type PredictResponse struct {
	Prediction      string             `json:"prediction"`
	Confidence      float64            `json:"confidence"`
	Probabilities   map[string]float64 `json:"probabilities"`
	ModelUploadDate time.Time          `json:"model_upload_date"`
	ImageSize       string             `json:"image_size"`
	ImageFormat     string             `json:"image_format"`
}
