package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

// Project is an explicit monitoring target. When any are listed (and
// enabled) they replace the group listing as the fan-out set.
type Project struct {
	ID      int64  `yaml:"id"`
	Name    string `yaml:"name,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type Config struct {
	GitLab struct {
		BaseURL string        `yaml:"base_url"`
		Token   string        `yaml:"token"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"gitlab"`

	Group struct {
		ID int64 `yaml:"id"`
	} `yaml:"group"`

	Fetch struct {
		PerProject  int `yaml:"per_project"`
		Concurrency int `yaml:"concurrency"`
	} `yaml:"fetch"`

	Watch struct {
		Interval  time.Duration `yaml:"interval"`
		PauseFile string        `yaml:"pause_file"`
	} `yaml:"watch"`

	Cache struct {
		Path string `yaml:"path"`
	} `yaml:"cache"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Projects []Project `yaml:"projects,omitempty"`
}

func Load(path string) (Config, error) {
	var c Config

	c.GitLab.BaseURL = "https://gitlab.com"
	c.GitLab.Timeout = 10 * time.Second
	c.Fetch.PerProject = 5
	c.Fetch.Concurrency = 8
	c.Watch.Interval = 30 * time.Second
	c.Cache.Path = expandHome("~/.cache/pipeline_dashboard.json")

	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}

	if v := os.Getenv("GITLAB_BASE_URL"); v != "" {
		c.GitLab.BaseURL = v
	}

	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		c.GitLab.Token = v
	}

	if v := os.Getenv("GITLAB_GROUP_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Group.ID = id
		}
	}

	if v := os.Getenv("GITLAB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.GitLab.Timeout = d
		}
	}

	if v := os.Getenv("WATCH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Watch.Interval = d
		}
	}

	if v := os.Getenv("CACHE_PATH"); v != "" {
		c.Cache.Path = expandHome(v)
	}

	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}

	if s := os.Getenv("GITLAB_PROJECTS"); s != "" {
		var ps []Project
		for _, item := range strings.Split(s, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			parts := strings.SplitN(item, ":", 2)
			id, err := strconv.ParseInt(parts[0], 10, 64)
			if err != nil {
				continue
			}
			p := Project{ID: id, Enabled: true}
			if len(parts) == 2 {
				p.Name = parts[1]
			}
			ps = append(ps, p)
		}
		if len(ps) > 0 {
			c.Projects = ps
		}
	}

	c.Cache.Path = expandHome(c.Cache.Path)
	if c.GitLab.BaseURL == "" {
		c.GitLab.BaseURL = "https://gitlab.com"
	}

	if c.Fetch.PerProject <= 0 {
		c.Fetch.PerProject = 5
	}

	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = 8
	}

	if c.Watch.Interval <= 0 {
		c.Watch.Interval = 30 * time.Second
	}

	if c.GitLab.Timeout <= 0 {
		c.GitLab.Timeout = 10 * time.Second
	}

	if c.GitLab.Token == "" {
		return c, errors.New("GITLAB_TOKEN is required")
	}

	if c.Group.ID == 0 && len(c.Projects) == 0 {
		return c, errors.New("no group id or projects configured (YAML or ENV)")
	}

	return c, nil
}

// EnabledProjects returns the explicit target list, empty when the group
// listing should be used instead.
func (c Config) EnabledProjects() []Project {
	var out []Project
	for _, p := range c.Projects {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

func Save(path string, c Config) error {
	if path == "" {
		return errors.New("empty config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lockFile := path + ".lock"
	lf, err := os.OpenFile(lockFile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = lf.Close() }()

	if runtime.GOOS != "windows" {
		if err := syscall.Flock(int(lf.Fd()), syscall.LOCK_EX); err != nil {
			return err
		}
		defer func() { _ = syscall.Flock(int(lf.Fd()), syscall.LOCK_UN) }()
	}

	b, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	defer func() { _ = f.Close() }()

	if _, err := f.Write(b); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if h, _ := os.UserHomeDir(); h != "" {
			return h + p[1:]
		}
	}
	return p
}
