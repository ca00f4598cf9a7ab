package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`

	Database Database `envPrefix:"DB_"`
	Auth     Auth     `envPrefix:"AUTH_"`
	Payment  Payment  `envPrefix:"PAYMENT_"`

	Gateway   Gateway   `envPrefix:"GATEWAY_"`
	Braintree Braintree `envPrefix:"BRAINTREE_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DSN" envDefault:"edupay.db"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Payment struct {
	// Provider selects the gateway client implementation: "hosted" or "braintree".
	Provider string `env:"PROVIDER" envDefault:"hosted"`
	Currency string `env:"CURRENCY" envDefault:"LKR"`
}

// Gateway holds credentials for the hosted-checkout provider.
type Gateway struct {
	BaseApiURL     string `env:"BASE_API_URL"`
	MerchantID     string `env:"MERCHANT_ID"`
	MerchantSecret string `env:"MERCHANT_SECRET"`
	ClientID       string `env:"CLIENT_ID"`
	ClientSecret   string `env:"CLIENT_SECRET"`
	ReturnURL      string `env:"RETURN_URL"`
	CancelURL      string `env:"CANCEL_URL"`
	NotifyURL      string `env:"NOTIFY_URL"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
	CardFormURL string `env:"CARD_FORM_URL"`
}
