package app

import (
	"time"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

type Config struct {
	JWTSecretKey         string
	AccessTokenTTL       time.Duration
	CondaEnvSegmentacion string
	CondaEnvPWAT         string
	UseRedisTokenStore   bool
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	return Config{
		JWTSecretKey:         jwtSecretKey,
		AccessTokenTTL:       time.Duration(accessTokenTTLSeconds) * time.Second,
		CondaEnvSegmentacion: utils.GetEnv("CATEGORIZADOR_ENV_SEGMENTACION", "radiomics", log),
		CondaEnvPWAT:         utils.GetEnv("CATEGORIZADOR_ENV_PWAT", "pyradiomics_env12", log),
		UseRedisTokenStore:   utils.GetEnvAsBool("TOKENSTORE_REDIS", false, log),
	}
}
