package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// fileEnvSuffix marks a variable holding the path of a file with the value,
// as used for Docker and Kubernetes secrets (e.g. FACEBOOK_APP_SECRET_FILE).
const fileEnvSuffix = "_FILE"

var durationType = reflect.TypeOf(time.Duration(0))

// LoadEnv overrides config values with the environment variables named in
// the env struct tags.
func LoadEnv(config *AppConfig) error {
	sections := []interface{}{
		&config.App,
		&config.Database,
		&config.Server,
		&config.Webhook,
		&config.Graph,
		&config.JWT,
		&config.Logging,
		&config.CORS,
		&config.Security,
		&config.Retention,
		&config.Dedupe,
		&config.RateLimit,
		&config.PageDefaults,
	}

	for _, section := range sections {
		if err := processStructEnv(section); err != nil {
			return err
		}
	}

	log.Debug().
		Str("APP_ENV", os.Getenv("APP_ENV")).
		Str("DB_HOST", os.Getenv("DB_HOST")).
		Bool("webhook_verify_token_set", config.Webhook.VerifyToken != "").
		Bool("app_secret_set", config.Webhook.AppSecret != "").
		Msg("Environment variables loaded")

	return nil
}

// processStructEnv applies the environment to every tagged field of s
func processStructEnv(s interface{}) error {
	val := reflect.ValueOf(s).Elem()
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		envName := field.Tag.Get("env")
		if envName == "" || !fieldVal.CanSet() {
			continue
		}

		raw, ok, err := lookupEnv(envName)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if err := setField(fieldVal, raw); err != nil {
			return fmt.Errorf("invalid value for %s: %w", envName, err)
		}
	}

	return nil
}

// lookupEnv returns the value of name, falling back to the content of the
// file named by name_FILE.
func lookupEnv(name string) (string, bool, error) {
	if value, ok := os.LookupEnv(name); ok {
		return value, true, nil
	}

	path, ok := os.LookupEnv(name + fileEnvSuffix)
	if !ok {
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s%s: %w", name, fileEnvSuffix, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// setField parses raw into the field's type
func setField(fieldVal reflect.Value, raw string) error {
	if fieldVal.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fieldVal.SetInt(int64(d))
		return nil
	}

	switch fieldVal.Kind() {
	case reflect.String:
		fieldVal.SetString(raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fieldVal.Type().Bits())
		if err != nil {
			return err
		}
		fieldVal.SetInt(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fieldVal.Type().Bits())
		if err != nil {
			return err
		}
		fieldVal.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fieldVal.SetBool(b)

	case reflect.Ptr:
		// A pointer lets an explicit false override a true default
		elem := reflect.New(fieldVal.Type().Elem())
		if err := setField(elem.Elem(), raw); err != nil {
			return err
		}
		fieldVal.Set(elem)

	case reflect.Slice:
		if fieldVal.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", fieldVal.Type())
		}
		values := strings.Split(raw, ",")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
		fieldVal.Set(reflect.ValueOf(values))

	default:
		return fmt.Errorf("unsupported type %s", fieldVal.Type())
	}

	return nil
}
