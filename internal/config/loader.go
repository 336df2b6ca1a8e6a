package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BALLROUTE_TICK_MS.
const EnvPrefix = "BALLROUTE"

// GlobalPath is the per-user config file, ~/.config/ballroute/config.
// It returns "" when the home directory is unknown.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ballroute", "config")
}

// ProjectPath is the config file in the working directory.
func ProjectPath() string {
	return filepath.Join(".ballroute", "config")
}

// LoadFile reads a KEY=VALUE config file and returns the whitelisted keys.
// Blank lines, # comments and lines without "=" are skipped. A leading
// "export " and one pair of surrounding quotes on the value are stripped, so
// the same file can be sourced by a shell.
func LoadFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if ok && slices.Contains(WhitelistedVars[:], key) {
			result[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return result, nil
}

func parseLine(raw string) (key, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	return strings.TrimSpace(key), value, true
}

// LoadEnv returns the whitelisted keys set in the environment under
// EnvPrefix, keyed by their unprefixed names.
func LoadEnv() map[string]string {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)

	result := make(map[string]string)
	for _, key := range WhitelistedVars {
		if err := v.BindEnv(key); err != nil {
			continue
		}
		if v.IsSet(key) {
			result[key] = v.GetString(key)
		}
	}
	return result
}

// LoadWithPrecedence assembles a Config by merging sources in order of
// increasing priority:
//
//  1. Built-in defaults
//  2. Global config file (globalPath)
//  3. Project config file (projectPath)
//  4. Explicit config file (explicitPath)
//  5. BALLROUTE_* environment variables
//  6. CLI overrides (cliOverrides map)
//
// Empty paths are skipped. Missing global and project files are not errors;
// a missing explicit file is.
func LoadWithPrecedence(globalPath, projectPath, explicitPath string, cliOverrides map[string]string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, layer := range []struct {
		name, path string
	}{
		{"global", globalPath},
		{"project", projectPath},
	} {
		if layer.path == "" {
			continue
		}
		m, err := LoadFile(layer.path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%s config: %w", layer.name, err)
			}
			continue
		}
		if err := ApplyMapToConfig(cfg, m); err != nil {
			return nil, fmt.Errorf("%s config: %w", layer.name, err)
		}
	}

	if explicitPath != "" {
		m, err := LoadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("explicit config: %w", err)
		}
		if err := ApplyMapToConfig(cfg, m); err != nil {
			return nil, fmt.Errorf("explicit config: %w", err)
		}
	}

	if err := ApplyMapToConfig(cfg, LoadEnv()); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if len(cliOverrides) > 0 {
		if err := ApplyMapToConfig(cfg, cliOverrides); err != nil {
			return nil, fmt.Errorf("flags: %w", err)
		}
	}

	return cfg, nil
}

// ApplyMapToConfig sets fields on cfg from the key-value pairs in m.
// Unknown keys are ignored. A numeric value that does not parse is an error
// naming the key.
func ApplyMapToConfig(cfg *Config, m map[string]string) error {
	var errs []error
	setInt := func(key, value string, dst *int) {
		v, err := strconv.Atoi(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, value))
			return
		}
		*dst = v
	}
	setFloat := func(key, value string, dst *float64) {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", key, value))
			return
		}
		*dst = v
	}

	for key, value := range m {
		switch key {
		case "TICK_MS":
			setInt(key, value, &cfg.TickMS)
		case "SORTING_POLICY":
			cfg.SortingPolicy = value
		case "EJECT_DURATION_MS":
			setInt(key, value, &cfg.EjectDurationMS)
		case "PROXIMITY_THRESHOLD":
			setFloat(key, value, &cfg.ProximityThreshold)
		case "MIN_SATURATION":
			setFloat(key, value, &cfg.MinSaturation)
		case "MIN_BRIGHTNESS":
			setFloat(key, value, &cfg.MinBrightness)
		case "RED_HUE_MAX":
			setFloat(key, value, &cfg.RedHueMax)
		case "RED_HUE_HIGH_MIN":
			setFloat(key, value, &cfg.RedHueHighMin)
		case "BLUE_HUE_MIN":
			setFloat(key, value, &cfg.BlueHueMin)
		case "BLUE_HUE_MAX":
			setFloat(key, value, &cfg.BlueHueMax)
		case "CONFIRMATION_COUNT":
			setInt(key, value, &cfg.ConfirmationCount)
		case "PASSAGE_TIMEOUT_MS":
			setInt(key, value, &cfg.PassageTimeoutMS)
		case "DIRECTION_WINDOW_MS":
			setInt(key, value, &cfg.DirectionWindowMS)
		case "VERBOSE":
			cfg.Verbose = parseBool(value)
		case "SCENARIO_FILE":
			cfg.ScenarioFile = value
		case "REPORT_FILE":
			cfg.ReportFile = value
		case "REALTIME":
			cfg.Realtime = parseBool(value)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// parseBool interprets common boolean representations.
// "true", "1", "yes" (case-insensitive) return true; everything else returns false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
