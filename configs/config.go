package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	PostgresURI          string
	RedisURI             string
	FrontendURL          string
	CORSOrigin           string
	MetaPageID           string
	MetaLongLivedToken   string
	InstagramBusinessID  string
	TiktokClientKey      string
	TiktokClientSecret   string
	TiktokRedirectURI    string
	RedditClientID       string
	RedditClientSecret   string
	RedditRedirectURI    string
	RedditUserAgent      string
	R2                   R2
	SecretKey            string
	MaxUploadSize        int64
	UploadDir            string
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", "127.0.0.1:6379"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		CORSOrigin:          getEnv("CORS_ORIGIN", "*"),
		MetaPageID:          getEnv("META_PAGE_ID", ""),
		MetaLongLivedToken:  getEnv("META_LONG_LIVED_ACCESS_TOKEN", ""),
		InstagramBusinessID: getEnv("INSTA_BUS_ACC_ID", ""),
		TiktokClientKey:     getEnv("TIKTOK_CLIENT_KEY", ""),
		TiktokClientSecret:  getEnv("TIKTOK_CLIENT_SECRET", ""),
		TiktokRedirectURI:   getEnv("TIKTOK_REDIRECT_URI", ""),
		RedditClientID:      getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret:  getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditRedirectURI:   getEnv("REDDIT_REDIRECT_URI", "http://localhost:3000/auth/reddit/callback"),
		RedditUserAgent:     getEnv("REDDIT_USER_AGENT", "ReachWay/1.0"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:     getEnv("SECRET_KEY", ""),
		MaxUploadSize: 10 * 1024 * 1024,
		UploadDir:     getEnv("UPLOAD_DIR", "uploads/posts"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
