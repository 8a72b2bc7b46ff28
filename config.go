package rgrreport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Rate file keys.
const (
	KeyUndergraduate  = "UGRD"
	KeyGraduate       = "GRAD"
	KeyFreeCredits    = "FREE_CREDITS"
	KeyCreditsFormula = "CREDITS_FORMULA"
	KeyTuitionFormula = "TUITION_FORMULA"

	// EnvPrefix prefixes environment overrides, e.g. RGR_UGRD.
	EnvPrefix = "RGR"

	defaultFreeCredits = 6
)

// RateConfig is the validated content of the rate file.
type RateConfig struct {
	Undergraduate  float64 `validate:"gt=0"`
	Graduate       float64 `validate:"gt=0"`
	FreeCredits    int     `validate:"gte=0"`
	CreditsFormula string
	TuitionFormula string
}

// Rates is the rate configuration ready for formula rendering.
type Rates struct {
	Undergraduate decimal.Decimal
	Graduate      decimal.Decimal
	FreeCredits   int
	Formulas      Formulas
}

var validate = validator.New()

// LoadRates reads the JSON rate file at path. UGRD and GRAD are required;
// every key may be overridden from the environment with the RGR_ prefix.
func LoadRates(path string) (*Rates, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyFreeCredits, defaultFreeCredits)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || !hasEnvRates() {
			return nil, &ConfigError{Path: path, Err: err}
		}
	}

	for _, key := range []string{KeyUndergraduate, KeyGraduate} {
		if !v.IsSet(key) {
			return nil, &ConfigError{Path: path, Key: key, Err: fmt.Errorf("missing")}
		}
	}

	ugrd, err := decimal.NewFromString(v.GetString(KeyUndergraduate))
	if err != nil {
		return nil, &ConfigError{Path: path, Key: KeyUndergraduate, Err: err}
	}
	grad, err := decimal.NewFromString(v.GetString(KeyGraduate))
	if err != nil {
		return nil, &ConfigError{Path: path, Key: KeyGraduate, Err: err}
	}

	cfg := RateConfig{
		Undergraduate:  ugrd.InexactFloat64(),
		Graduate:       grad.InexactFloat64(),
		FreeCredits:    v.GetInt(KeyFreeCredits),
		CreditsFormula: v.GetString(KeyCreditsFormula),
		TuitionFormula: v.GetString(KeyTuitionFormula),
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{Path: path, Key: failedKey(err), Err: err}
	}

	formulas, err := NewFormulas(cfg.CreditsFormula, cfg.TuitionFormula)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	rates := &Rates{
		Undergraduate: ugrd,
		Graduate:      grad,
		FreeCredits:   cfg.FreeCredits,
		Formulas:      formulas,
	}

	// A template referencing an unknown name fails here rather than mid-report.
	if _, _, err := rates.render(sampleLayout(), 2); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return rates, nil
}

// hasEnvRates reports whether both rates come from the environment, in which
// case the rate file may be absent.
func hasEnvRates() bool {
	_, u := os.LookupEnv(EnvPrefix + "_" + KeyUndergraduate)
	_, g := os.LookupEnv(EnvPrefix + "_" + KeyGraduate)
	return u && g
}

// failedKey maps the first validation failure back to its rate file key.
func failedKey(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	switch verrs[0].Field() {
	case "Undergraduate":
		return KeyUndergraduate
	case "Graduate":
		return KeyGraduate
	case "FreeCredits":
		return KeyFreeCredits
	default:
		return strings.ToUpper(verrs[0].Field())
	}
}

// render produces the credits and tuition formulas for one Process row.
func (r *Rates) render(l processLayout, row int) (credits, tuition string, err error) {
	env := FormulaEnv{
		Row:      row,
		Career:   ColToName(l.career),
		Current:  ColToName(l.current()),
		Lifetime: ColToName(l.lifetime),
		Credits:  ColToName(l.credits),
		Tuition:  ColToName(l.tuition),
		UGRD:     r.Undergraduate,
		GRAD:     r.Graduate,
		Free:     r.FreeCredits,
	}
	if credits, err = r.Formulas.Credits.Render(env); err != nil {
		return "", "", err
	}
	if tuition, err = r.Formulas.Tuition.Render(env); err != nil {
		return "", "", err
	}
	return credits, tuition, nil
}
