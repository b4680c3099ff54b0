package config

import (
	"os"
	"strconv"
	"sync"
)

type RankingConfig struct {
	MaxResults       int
	IntentCap        int
	RelevanceAlpha   float64
	FinalScoreWeight float64
	EmbedCacheSize   int
	EmbedConcurrency int
}

var (
	rankingConfig *RankingConfig
	rankingOnce   sync.Once
)

func LoadRankingConfig() *RankingConfig {
	rankingOnce.Do(func() {
		rankingConfig = &RankingConfig{
			MaxResults:       envInt("MAX_RESULTS", 20),
			IntentCap:        envInt("INTENT_CAP", 5),
			RelevanceAlpha:   envFloat("RELEVANCE_ALPHA", 0.6),
			FinalScoreWeight: envFloat("FINAL_SCORE_WEIGHT", 0.5),
			EmbedCacheSize:   envInt("EMBED_CACHE_SIZE", 1024),
			EmbedConcurrency: envInt("EMBED_CONCURRENCY", 6),
		}
	})
	return rankingConfig
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return def
}
