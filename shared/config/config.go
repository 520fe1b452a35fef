package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ThreadsPerPage    int           `yaml:"threads_per_page"`
	ThreadsTail       int           `yaml:"threads_tail"`        // orphans merged into the last page
	PostsPerPage      int           `yaml:"posts_per_page"`
	PostsTail         int           `yaml:"posts_tail"`
	ReadTrackerCutoff int           `yaml:"readtracker_cutoff"`  // days, older posts are always read
	SplitPostsLimit   int           `yaml:"split_posts_limit"`   // max posts moved by one split
	JwtTTL            time.Duration `yaml:"jwt_ttl"`
	LogLevel          string        `yaml:"log_level"`
	LogJSON           bool          `yaml:"log_json"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	Ranking           Ranking       `yaml:"ranking"`
	Tracing           Tracing       `yaml:"tracing"`
	RateLimit         RateLimit     `yaml:"rate_limit"`
}

// RateLimit applies to the split and markup endpoints.
type RateLimit struct {
	PerMinute float64 `yaml:"per_minute"`
	Burst     int     `yaml:"burst"`
}

type Ranking struct {
	Length   int           `yaml:"length"` // days of posting activity counted
	Size     int           `yaml:"size"`
	TTL      time.Duration `yaml:"ttl"`
	Schedule string        `yaml:"schedule"` // cron spec for rebuilding
}

type Tracing struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	Redis  Redis  `yaml:"redis"`
	JwtKey string `yaml:"jwt_key"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

// ReadTrackerCutoff is the forum-wide read-tracking window.
func (s *Config) ReadTrackerCutoff() time.Duration {
	return time.Duration(s.Public.ReadTrackerCutoff) * 24 * time.Hour
}

func (s *Config) RankingLength() time.Duration {
	return time.Duration(s.Public.Ranking.Length) * 24 * time.Hour
}

func (p *Public) setDefaults() {
	if p.ThreadsPerPage <= 0 {
		p.ThreadsPerPage = 25
	}
	if p.ThreadsTail < 0 {
		p.ThreadsTail = 0
	}
	if p.PostsPerPage <= 0 {
		p.PostsPerPage = 18
	}
	if p.PostsTail < 0 {
		p.PostsTail = 0
	}
	if p.ReadTrackerCutoff <= 0 {
		p.ReadTrackerCutoff = 40
	}
	if p.SplitPostsLimit <= 0 {
		p.SplitPostsLimit = 24
	}
	if p.Ranking.Length <= 0 {
		p.Ranking.Length = 30
	}
	if p.Ranking.Size <= 0 {
		p.Ranking.Size = 30
	}
	if p.Ranking.TTL <= 0 {
		p.Ranking.TTL = 24 * time.Hour
	}
	if p.Ranking.Schedule == "" {
		p.Ranking.Schedule = "@daily"
	}
	if p.RateLimit.PerMinute <= 0 {
		p.RateLimit.PerMinute = 30
	}
	if p.RateLimit.Burst <= 0 {
		p.RateLimit.Burst = 10
	}
	if p.Tracing.ServiceName == "" {
		p.Tracing.ServiceName = "forum-api"
	}
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err = yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + configPath)
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.setDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	if private.JwtKey == "" {
		panic("jwt_key is required in private.yaml")
	}

	return &Config{Public: public, Private: private}
}
