package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration
type Config struct {
	Addr              string `mapstructure:"addr"`
	DBPath            string `mapstructure:"dbPath"`
	LogLevel          string `mapstructure:"logLevel"`
	LogPretty         bool   `mapstructure:"logPretty"`
	TickRate          int    `mapstructure:"tickRate"` // turns per second
	MaxTurns          int    `mapstructure:"maxTurns"`
	MaxBattles        int    `mapstructure:"maxBattles"`
	MaxShipsPerBattle int    `mapstructure:"maxShipsPerBattle"`
	PublicURL         string `mapstructure:"publicURL"`
	Rules             Rules  `mapstructure:"rules"`
}

// TickDuration is the wall-clock length of one turn
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("dbPath", "naval.db")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", false)
	v.SetDefault("tickRate", 30)
	v.SetDefault("maxTurns", 10000)
	v.SetDefault("maxBattles", 100)
	v.SetDefault("maxShipsPerBattle", 10)
	v.SetDefault("publicURL", "http://localhost:8080")

	r := DefaultRules()
	v.SetDefault("rules.fieldWidth", r.FieldWidth)
	v.SetDefault("rules.fieldHeight", r.FieldHeight)
	v.SetDefault("rules.shipWidth", r.ShipWidth)
	v.SetDefault("rules.shipHeight", r.ShipHeight)
	v.SetDefault("rules.shipEnergy", r.ShipEnergy)
	v.SetDefault("rules.shipMaxSpeed", r.ShipMaxSpeed)
	v.SetDefault("rules.shipMaxTurn", r.ShipMaxTurn)
	v.SetDefault("rules.missileWidth", r.MissileWidth)
	v.SetDefault("rules.missileHeight", r.MissileHeight)
	v.SetDefault("rules.explosionLength", r.ExplosionLength)
	v.SetDefault("rules.projectileRadius", r.ProjectileRadius)
	v.SetDefault("rules.minBulletPower", r.MinBulletPower)
	v.SetDefault("rules.maxBulletPower", r.MaxBulletPower)
	v.SetDefault("rules.minMissilePower", r.MinMissilePower)
	v.SetDefault("rules.maxMissilePower", r.MaxMissilePower)
	v.SetDefault("rules.minBlastDamage", r.MinBlastDamage)
	v.SetDefault("rules.killBonusRatio", r.KillBonusRatio)
	v.SetDefault("rules.naval", r.Naval)
	v.SetDefault("rules.hideEnemyNames", r.HideEnemyNames)
}

// LoadConfig reads defaults, then the optional file at path, then NAVAL_*
// environment variables.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("naval")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the server settings and the battle rules
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tickRate must be positive, got %d", c.TickRate)
	}
	if c.MaxShipsPerBattle < 2 {
		return fmt.Errorf("maxShipsPerBattle must be at least 2, got %d", c.MaxShipsPerBattle)
	}
	if c.MaxBattles < 1 {
		return fmt.Errorf("maxBattles must be at least 1, got %d", c.MaxBattles)
	}
	return c.Rules.Validate()
}
