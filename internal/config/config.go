package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	SMTP SMTP `envPrefix:"SMTP_"`

	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Checkout  Checkout  `envPrefix:"CHECKOUT_"`
	LiqPay    LiqPay    `envPrefix:"LIQPAY_"`
	WayForPay WayForPay `envPrefix:"WAYFORPAY_"`
	Braintree Braintree `envPrefix:"BRAINTREE_"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Checkout struct {
	BaseApiURL       string `env:"BASE_API_URL" envDefault:"https://api.checkout.com"`
	SecretKey        string `env:"SECRET_KEY"`
	WebhookSecret    string `env:"WEBHOOK_SECRET"`
	AuthorizationKey string `env:"AUTHORIZATION_KEY"`
}

type LiqPay struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://www.liqpay.ua/api"`
	PublicKey  string `env:"PUBLIC_KEY"`
	PrivateKey string `env:"PRIVATE_KEY"`
}

type WayForPay struct {
	BaseApiURL      string `env:"BASE_API_URL" envDefault:"https://api.wayforpay.com/api"`
	MerchantAccount string `env:"MERCHANT_ACCOUNT"`
	MerchantDomain  string `env:"MERCHANT_DOMAIN"`
	SecretKey       string `env:"SECRET_KEY"`
}

type Braintree struct {
	Environment             string `env:"ENVIRONMENT"`
	MerchantID              string `env:"MERCHANT_ID"`
	PublicKey               string `env:"PUBLIC_KEY"`
	PrivateKey              string `env:"PRIVATE_KEY"`
	MasterMerchantAccountID string `env:"MASTER_MERCHANT_ACCOUNT_ID"`
}

type SMTP struct {
	Host          string `env:"HOST"`
	Port          string `env:"PORT" envDefault:"587"`
	Username      string `env:"USERNAME"`
	Password      string `env:"PASSWORD"`
	From          string `env:"FROM"`
	NotifyAddress string `env:"NOTIFY_ADDRESS"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
