package app

import (
	"time"

	"github.com/sprintflow/sprintflow-backend/internal/pkg/envutil"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
)

type Config struct {
	Port            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// AdminEmail grants admin rights to whoever registers with it.
	AdminEmail string
	// RedisAddr empty means the in-process bus is used instead.
	RedisAddr string
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.GetEnv("PORT", "8080", log)
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := envutil.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	adminEmail := envutil.GetEnv("ADMIN_EMAIL", "", log)
	redisAddr := envutil.GetEnv("REDIS_ADDR", "", log)
	return Config{
		Port:            port,
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		AdminEmail:      adminEmail,
		RedisAddr:       redisAddr,
	}
}
