// Package econfig loads and hot-reloads per-project editor configuration
// from <project_dir>/.eddy.toml, built on viper the way the teacher wires
// its own configuration.
package econfig

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/viper"

	"github.com/eddy-editor/eddy/elog"
)

// LSPServer is one language's command line for starting its LSP server.
type LSPServer struct {
	Language string
	Command  string
	Args     []string
}

// Config is the editor's resolved, read-only-by-convention configuration.
// Mutating fields after Load is undefined except through Watch's reload,
// which updates LogTheme, JSONLogs and the server table under the
// Config's own lock.
type Config struct {
	mu sync.RWMutex

	ProjectDir string
	LogTheme   string
	JSONLogs   bool
	servers    []LSPServer
}

// Load reads <projectDir>/.eddy.toml, falling back to built-in defaults
// for any key that is absent.
func Load(projectDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".eddy")
	v.SetConfigType("toml")
	v.AddConfigPath(projectDir)

	v.SetDefault("log_theme", "default")
	v.SetDefault("json_logs", false)
	// Same shape a TOML [[servers]] table decodes to, so applyFrom reads
	// defaults and file entries alike.
	v.SetDefault("servers", []interface{}{
		map[string]interface{}{"language": "go", "command": "gopls", "args": []interface{}{"serve"}},
		map[string]interface{}{"language": "c", "command": "clangd"},
	})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{ProjectDir: projectDir}
	cfg.applyFrom(v)
	return cfg, nil
}

func (c *Config) applyFrom(v *viper.Viper) {
	var servers []LSPServer
	raw, _ := v.Get("servers").([]interface{})
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		s := LSPServer{}
		if lang, ok := m["language"].(string); ok {
			s.Language = lang
		}
		if cmd, ok := m["command"].(string); ok {
			s.Command = cmd
		}
		if args, ok := m["args"].([]interface{}); ok {
			for _, a := range args {
				if as, ok := a.(string); ok {
					s.Args = append(s.Args, as)
				}
			}
		} else if cmdline, ok := m["commandline"].(string); ok {
			// A single shell-quoted command line (e.g. "clangd --log=verbose")
			// is an alternative to the command/args pair, for users who'd
			// rather paste one string than fill in a TOML array.
			if parts, err := shellquote.Split(cmdline); err == nil && len(parts) > 0 {
				s.Command = parts[0]
				s.Args = parts[1:]
			} else {
				elog.Warnw("econfig: failed to parse commandline", "language", s.Language, "commandline", cmdline, "error", err)
			}
		}
		servers = append(servers, s)
	}

	c.mu.Lock()
	c.LogTheme = v.GetString("log_theme")
	c.JSONLogs = v.GetBool("json_logs")
	if servers != nil {
		c.servers = servers
	}
	c.mu.Unlock()
}

// Servers returns a snapshot of the currently configured LSP servers.
func (c *Config) Servers() []LSPServer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]LSPServer, len(c.servers))
	copy(out, c.servers)
	return out
}

// ServerFor returns the configured LSP command line for a language, and
// whether one was found.
func (c *Config) ServerFor(language string) (LSPServer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.servers {
		if s.Language == language {
			return s, true
		}
	}
	return LSPServer{}, false
}

// Watch hot-reloads the LSP command table and log settings when
// .eddy.toml changes on disk. Runtimes already started keep the command
// line they were launched with; only newly started runtimes observe the
// change. Watch returns nothing; the watch runs in the background for
// the rest of the process.
func (c *Config) Watch() {
	v := viper.New()
	v.SetConfigName(".eddy")
	v.SetConfigType("toml")
	v.AddConfigPath(c.ProjectDir)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(e fsnotify.Event) {
		elog.Infow("config changed, reloading", "file", filepath.Clean(e.Name))
		c.applyFrom(v)
	})
	v.WatchConfig()
}
