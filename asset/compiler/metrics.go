package compiler

import (
	"time"

	"github.com/achilleasa/bvhc/asset/scene"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bvhc",
		Name:      "scene_builds_total",
		Help:      "The number of scene compilations by result.",
	}, []string{"result"})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bvhc",
		Name:      "scene_build_duration_seconds",
		Help:      "The time spent compiling scenes.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	bvhNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bvhc",
		Name:      "bvh_nodes",
		Help:      "The number of BVH nodes in the last compiled scene.",
	})
)

func recordBuild(sc *scene.Scene, elapsed time.Duration, err error) {
	buildDuration.Observe(elapsed.Seconds())
	if err != nil {
		buildsTotal.WithLabelValues("error").Inc()
		return
	}
	buildsTotal.WithLabelValues("ok").Inc()
	bvhNodes.Set(float64(len(sc.BvhNodeList)))
}
