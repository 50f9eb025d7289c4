package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Settlement engine tuning
	SettlementMaxRetries int
	RateLimit            string

	// Posting account wiring. Each value is a detail account ID from the
	// chart of accounts.
	ReceivableControlAccount string
	PayableControlAccount    string
	AllowanceExpenseAccount  string
	AllowanceIncomeAccount   string
	CustomerAdvancesAccount  string
	SupplierAdvancesAccount  string
	DefaultCashAccount       string

	// MethodCashAccounts maps payment method IDs to cash/bank accounts,
	// parsed from METHOD_CASH_ACCOUNTS ("CASH=1111,BANK_TRANSFER=1112").
	MethodCashAccounts map[string]string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("SETTLEMENT_MAX_RETRIES", 3)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("ACCOUNT_RECEIVABLE_CONTROL", "")
	viper.SetDefault("ACCOUNT_PAYABLE_CONTROL", "")
	viper.SetDefault("ACCOUNT_ALLOWANCE_EXPENSE", "")
	viper.SetDefault("ACCOUNT_ALLOWANCE_INCOME", "")
	viper.SetDefault("ACCOUNT_CUSTOMER_ADVANCES", "")
	viper.SetDefault("ACCOUNT_SUPPLIER_ADVANCES", "")
	viper.SetDefault("ACCOUNT_DEFAULT_CASH", "")
	viper.SetDefault("METHOD_CASH_ACCOUNTS", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.SettlementMaxRetries = viper.GetInt("SETTLEMENT_MAX_RETRIES")
	if cfg.SettlementMaxRetries < 0 {
		log.Printf("Warning: SETTLEMENT_MAX_RETRIES is negative (%d). Defaulting to 3.\n", cfg.SettlementMaxRetries)
		cfg.SettlementMaxRetries = 3
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "100-M"
	}

	cfg.ReceivableControlAccount = viper.GetString("ACCOUNT_RECEIVABLE_CONTROL")
	cfg.PayableControlAccount = viper.GetString("ACCOUNT_PAYABLE_CONTROL")
	cfg.AllowanceExpenseAccount = viper.GetString("ACCOUNT_ALLOWANCE_EXPENSE")
	cfg.AllowanceIncomeAccount = viper.GetString("ACCOUNT_ALLOWANCE_INCOME")
	cfg.CustomerAdvancesAccount = viper.GetString("ACCOUNT_CUSTOMER_ADVANCES")
	cfg.SupplierAdvancesAccount = viper.GetString("ACCOUNT_SUPPLIER_ADVANCES")
	cfg.DefaultCashAccount = viper.GetString("ACCOUNT_DEFAULT_CASH")

	for _, name := range []struct{ key, value string }{
		{"ACCOUNT_RECEIVABLE_CONTROL", cfg.ReceivableControlAccount},
		{"ACCOUNT_PAYABLE_CONTROL", cfg.PayableControlAccount},
		{"ACCOUNT_DEFAULT_CASH", cfg.DefaultCashAccount},
	} {
		if name.value == "" {
			log.Printf("Warning: %s not set. Settlements needing it will be rejected.\n", name.key)
		}
	}

	cfg.MethodCashAccounts = parseMethodCashAccounts(viper.GetString("METHOD_CASH_ACCOUNTS"))

	return cfg, nil
}

// parseMethodCashAccounts parses "METHOD=ACCOUNT,METHOD=ACCOUNT" pairs.
// Malformed segments are skipped with a warning rather than failing startup.
func parseMethodCashAccounts(raw string) map[string]string {
	out := make(map[string]string)
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		method, account, ok := strings.Cut(pair, "=")
		method = strings.TrimSpace(method)
		account = strings.TrimSpace(account)
		if !ok || method == "" || account == "" {
			log.Printf("Warning: skipping malformed METHOD_CASH_ACCOUNTS entry %q\n", pair)
			continue
		}
		out[method] = account
	}
	return out
}
