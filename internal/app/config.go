package app

import (
	"github.com/yungbote/mastery-engine/internal/engine"
	"github.com/yungbote/mastery-engine/internal/platform/envutil"
)

type Config struct {
	HTTPAddr   string
	LogMode    string
	RedisAddr  string
	PolicyPath string

	Policy engine.Policy
}

func LoadConfig() (Config, error) {
	cfg := Config{
		HTTPAddr:   envutil.String("HTTP_ADDR", ":8080"),
		LogMode:    envutil.String("LOG_MODE", "development"),
		RedisAddr:  envutil.String("REDIS_ADDR", ""),
		PolicyPath: envutil.String("POLICY_PATH", ""),
	}
	policy, err := engine.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return cfg, err
	}
	cfg.Policy = policy
	return cfg, nil
}
