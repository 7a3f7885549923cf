package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	uploadAccepted = "accepted"
	uploadRejected = "rejected"
	uploadFailed   = "failed"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todoapi_uploads_total",
		Help: "Uploads by outcome: accepted, rejected (validation) or failed (storage).",
	}, []string{"result"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "todoapi_upload_bytes_total",
		Help: "Bytes stored by accepted uploads.",
	})
)
