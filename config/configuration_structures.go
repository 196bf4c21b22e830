package config

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret      string `yaml:"access_secret"`
	RefreshSecret     string `yaml:"refresh_secret"`
	AccessTokenTTL    string `yaml:"access_token_ttl"`
	RefreshTokenTTL   string `yaml:"refresh_token_ttl"`
	ReturnTokenInBody bool   `yaml:"return_token_in_body"`
}

type CookieConfig struct {
	// Production включает атрибут Secure у всех сессионных cookie
	Production bool `yaml:"production"`
}

type GithubConfig struct {
	AuthorizeURL        string `yaml:"authorize_url"`
	TokenURL            string `yaml:"token_url"`
	UserAPIURL          string `yaml:"user_api_url"`
	ClientID            string `yaml:"client_id"`
	ClientSecret        string `yaml:"client_secret"`
	RedirectURI         string `yaml:"redirect_uri"`
	Scope               string `yaml:"scope"`
	FrontendRedirectURL string `yaml:"frontend_redirect_url"`
}

type OAuthConfig struct {
	Github GithubConfig `yaml:"github"`
	// StateTTL задаёт время жизни anti-forgery state (по умолчанию 10m)
	StateTTL string `yaml:"state_ttl"`
}

type RateLimitConfig struct {
	Window string `yaml:"window"`
	Max    int64  `yaml:"max"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}
