package model

type StorageStats struct {
	FileCount      int64   `json:"total_archivos"`
	UsedBytes      int64   `json:"espacio_usado"`
	TotalBytes     int64   `json:"espacio_total"`
	AvailableBytes int64   `json:"espacio_disponible"`
	UsedPercent    float64 `json:"porcentaje_usado"`
}
