package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL string // DB接続文字列（あれば最優先）

	JWTSecret string // JWT署名シークレット

	RazorpayKeyID     string // 決済プロバイダのkey_id
	RazorpayKeySecret string // 決済プロバイダのkey_secret（署名検証にも使う）
	RazorpayAPIURL    string // 決済プロバイダAPIのベースURL

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayAPIURL:    getenv("RAZORPAY_API_URL", "https://api.razorpay.com"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RazorpayKeyID == "" {
		return Config{}, fmt.Errorf("RAZORPAY_KEY_ID is required")
	}
	if cfg.RazorpayKeySecret == "" {
		return Config{}, fmt.Errorf("RAZORPAY_KEY_SECRET is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
