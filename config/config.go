package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string `toml:"env"`

	Database  DatabaseConfigs  `toml:"database"`
	ApiServer APIServerConfigs `toml:"api_server"`
	Auth      AuthConfigs      `toml:"auth"`
	Session   SessionConfigs   `toml:"session"`
	Redis     RedisConfigs     `toml:"redis"`
	Game      GameConfigs      `toml:"game"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type APIServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`

	AllowedOrigins []string `toml:"allowed_origins"`
	DefaultLimit   int      `toml:"default_limit"`
	MaxLimit       int      `toml:"max_limit"`
}

func (s *APIServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret  string       `toml:"token_secret"`
	AccessToken  TokenConfigs `toml:"access_token"`
	RefreshToken TokenConfigs `toml:"refresh_token"`

	Google  OAuth2Config `toml:"google"`
	Twitter OAuth2Config `toml:"twitter"`
}

type TokenConfigs struct {
	Name       string   `toml:"name"`
	Expiration Duration `toml:"expiration"`
}

type OAuth2Config struct {
	Name         string   `toml:"name"`
	Issuer       string   `toml:"issuer"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	VerifyURL    string   `toml:"verify_url"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	RedirectURL  string   `toml:"redirect_url"`
	IDField      string   `toml:"id_field"`
	Scopes       []string `toml:"scopes"`
}

type SessionConfigs struct {
	Secret string `toml:"secret"`
	Name   string `toml:"name"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type GameConfigs struct {
	DefaultScore      int64 `toml:"default_score"`
	FollowReward      int64 `toml:"follow_reward"`
	BaseCheckInReward int64 `toml:"base_checkin_reward"`
	StreakBonus       int64 `toml:"streak_bonus"`
	MaxCheckInReward  int64 `toml:"max_checkin_reward"`
	DailyFollowLimit  int   `toml:"daily_follow_limit"`

	TaskBatchLimit int `toml:"task_batch_limit"`
	HistoryLimit   int `toml:"history_limit"`

	FollowVerifyDelay Duration `toml:"follow_verify_delay"`
	BoostTickInterval Duration `toml:"boost_tick_interval"`
	BoostTickChance   float64  `toml:"boost_tick_chance"`

	BoostOptions []BoostOption `toml:"boost_options"`
}

type BoostOption struct {
	Followers int   `toml:"followers"`
	Price     int64 `toml:"price"`
	Best      bool  `toml:"best"`
}

// Duration makes time.Duration decodable from TOML strings like "4.5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = parsed
	return nil
}
