package app

import (
	"strings"
	"time"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/services"
	"github.com/mburgan/gutcheck-backend/internal/utils"
)

type Config struct {
	ServiceName     string
	JWTSecretKey    string
	AllowOrigins    []string
	CategoryMapPath string
	MLCacheTTL      time.Duration
	Engine          services.EngineConfig
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	mlCacheTTLSeconds := utils.GetEnvAsInt("ML_CACHE_TTL", 86400, log)

	return Config{
		ServiceName:     "gutcheck-backend",
		JWTSecretKey:    jwtSecretKey,
		AllowOrigins:    splitOrigins(origins),
		CategoryMapPath: utils.GetEnv("CATEGORY_MAP_PATH", "", log),
		MLCacheTTL:      time.Duration(mlCacheTTLSeconds) * time.Second,
		Engine: services.EngineConfig{
			DefaultDaysBack:       utils.GetEnvAsInt("DEFAULT_DAYS_BACK", 30, log),
			TimeWindowHours:       utils.GetEnvAsInt("TIME_WINDOW_HOURS", 48, log),
			MinConfidence:         utils.GetEnvAsFloat("MIN_CONFIDENCE", 0.3, log),
			MinSampleSize:         utils.GetEnvAsInt("MIN_SAMPLE_SIZE", 3, log),
			SmoothingK:            utils.GetEnvAsFloat("CONFIDENCE_SMOOTHING_K", 5.0, log),
			HighSeverityThreshold: utils.GetEnvAsFloat("ML_HIGH_SEVERITY_THRESHOLD", 7.0, log),
			MLMinClassCount:       utils.GetEnvAsInt("ML_MIN_CLASS_COUNT", 10, log),
			MLTrainFraction:       utils.GetEnvAsFloat("ML_TRAIN_FRACTION", 0.7, log),
			MLDaysBack:            utils.GetEnvAsInt("ML_DAYS_BACK", 90, log),
		},
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
