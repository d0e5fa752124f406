package currency

import (
	"strings"

	"github.com/spf13/viper"
)

// Rates maps an ISO currency code to its static multiplier into the
// settlement currency (NGN). Paystack accounts are activated per
// currency; until multi-currency is enabled on the account every charge
// settles in NGN, so foreign amounts are converted with these fixed
// rates. Update periodically or override via rates.yml.
type Rates map[string]float64

const usdToNGN = 1600

func DefaultRates() Rates {
	return Rates{
		"NGN": 1,
		"USD": usdToNGN,
		"GBP": usdToNGN * 1.27,
		"EUR": usdToNGN * 1.08,
	}
}

// LoadRates reads an optional rates.yml override. A missing file falls
// back to the documented defaults; a present file replaces only the
// codes it names.
func LoadRates() (Rates, error) {
	v := viper.New()
	v.SetConfigName("rates")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/zakatd")
	v.AddConfigPath(".")

	rates := DefaultRates()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		return rates, nil
	}

	var override map[string]float64
	if err := v.UnmarshalKey("rates", &override); err != nil {
		return nil, err
	}
	for code, rate := range override {
		if rate <= 0 {
			continue
		}
		rates[strings.ToUpper(code)] = rate
	}
	return rates, nil
}
