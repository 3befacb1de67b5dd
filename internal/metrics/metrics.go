package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 投票引擎的 Prometheus 指标，经 /metrics 暴露
var (
	// VotesTotal 已接受的ELO投票总数
	VotesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiprank_votes_total",
		Help: "已接受的ELO投票总数",
	})

	// RatingsTotal 已接受的分类评分提交总数（含覆盖更新）
	RatingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiprank_ratings_total",
		Help: "已接受的分类评分提交总数",
	})

	// RecomputeTotal 评分统计重算次数，按结果分类
	RecomputeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiprank_recompute_total",
		Help: "评分统计重算次数",
	}, []string{"status"})

	// RecomputeDuration 单次重算耗时（秒）
	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shiprank_recompute_duration_seconds",
		Help:    "单次评分统计重算耗时",
		Buckets: prometheus.DefBuckets,
	})
)
