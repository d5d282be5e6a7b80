package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mebel_image_uploads_total",
			Help: "Количество обработанных файлов изображений по результату",
		},
		[]string{"result"},
	)

	imageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mebel_image_stored_bytes",
			Help:    "Размер сохранённых изображений после обработки",
			Buckets: prometheus.ExponentialBuckets(16<<10, 2, 10),
		},
	)

	logoUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mebel_logo_uploads_total",
			Help: "Количество загрузок логотипов по формату",
		},
		[]string{"format"},
	)

	serviceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mebel_service_requests_total",
			Help: "Количество заявок по типу услуги",
		},
		[]string{"service_type"},
	)
)
